package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/NFOSaver/internal/app"
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/itemfile"
	"github.com/John-Robertt/NFOSaver/internal/scan"
)

// input 是一组待处理条目及其来源。
type input struct {
	Source string
	Items  []domain.ItemDescriptor
	// Update 来自清单的 update_kind；目录扫描时为空。
	Update string
}

// loadInput 支持两种输入：
// - 目录：扫描电影家族条目，并推导 mixed folder
// - 文件：JSON 清单（先按 schema 校验）
func loadInput(arg string, excludeDirs []string) (input, error) {
	p, err := filepath.Abs(strings.TrimSpace(arg))
	if err != nil {
		return input{}, fmt.Errorf("解析路径失败：%w", err)
	}
	fi, err := os.Stat(p)
	if err != nil {
		return input{}, fmt.Errorf("读取输入失败：%w", err)
	}

	if fi.IsDir() {
		items, err := scan.ScanMovies(p, excludeDirs)
		if err != nil {
			return input{}, fmt.Errorf("扫描目录失败：%w", err)
		}
		app.MarkMixedFolders(items)
		return input{Source: p, Items: items}, nil
	}

	m, err := itemfile.Load(p)
	if err != nil {
		return input{}, err
	}
	return input{Source: p, Items: m.Items, Update: m.UpdateKind}, nil
}

// resolveUpdate：显式 flag 优先，其次清单，最后 metadata_edit（CLI 调用视为用户主动编辑）。
func resolveUpdate(flagValue, manifest string) (domain.UpdateKind, error) {
	v := strings.TrimSpace(flagValue)
	if v == "" {
		v = strings.TrimSpace(manifest)
	}
	if v == "" {
		return domain.UpdateMetadataEdit, nil
	}
	u, ok := domain.ParseUpdateKind(v)
	if !ok {
		return domain.UpdateNone, fmt.Errorf("update kind 不支持：%q", v)
	}
	return u, nil
}
