package config

import "strings"

// SubstitutePath 对写进 NFO 的路径应用替换规则（enable_path_substitution 关闭时原样返回）。
//
// 规则：按配置顺序取第一条前缀匹配（必须落在路径分隔符边界上）；
// 若目标前缀只使用一种分隔符，剩余部分的分隔符统一成同一种。
func (o Options) SubstitutePath(p string) string {
	if !o.EnablePathSubstitution || p == "" {
		return p
	}
	for _, s := range o.PathSubstitutions {
		from := strings.TrimRight(s.From, `/\`)
		if from == "" || !strings.HasPrefix(p, from) {
			continue
		}
		rest := p[len(from):]
		if rest != "" && rest[0] != '/' && rest[0] != '\\' {
			continue
		}
		to := strings.TrimRight(s.To, `/\`)
		switch {
		case strings.Contains(to, `\`) && !strings.Contains(to, "/"):
			rest = strings.ReplaceAll(rest, "/", `\`)
		case strings.Contains(to, "/") && !strings.Contains(to, `\`):
			rest = strings.ReplaceAll(rest, `\`, "/")
		}
		return to + rest
	}
	return p
}
