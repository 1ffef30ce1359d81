// Package itemfile 从 JSON 清单加载条目快照（宿主媒体库的替身）。
//
// 清单先用内置 JSON Schema 校验，再解码；相对路径按清单所在目录解析。
package itemfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/John-Robertt/NFOSaver/internal/domain"
)

//go:embed schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Manifest 是解码后的清单。
type Manifest struct {
	// UpdateKind 为空表示由调用方决定。
	UpdateKind string
	Items      []domain.ItemDescriptor
}

// ValidationError 表示清单不符合 schema（列出全部问题）。
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("清单 %q 不合法：\n  - %s", e.Path, strings.Join(e.Problems, "\n  - "))
}

// IsValidationError 判断 err 是否为 ValidationError。
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

type fileManifest struct {
	UpdateKind string     `json:"update_kind"`
	Items      []fileItem `json:"items"`
}

type fileItem struct {
	ID                    string      `json:"id"`
	Kind                  string      `json:"kind"`
	ExtraType             string      `json:"extra_type"`
	Container             string      `json:"container"`
	Path                  string      `json:"path"`
	ContainingFolderPath  string      `json:"containing_folder_path"`
	InMixedFolder         bool        `json:"in_mixed_folder"`
	SupportsLocalMetadata *bool       `json:"supports_local_metadata"`
	Meta                  domain.Meta `json:"meta"`
}

// Load 读取并校验清单文件。
func Load(path string) (Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Manifest{}, err
	}
	return Parse(b, filepath.Dir(abs), abs)
}

// Parse 校验并解码清单内容。baseDir 用于解析相对路径；name 只用于错误信息。
func Parse(b []byte, baseDir, name string) (Manifest, error) {
	schema, err := compiledSchema()
	if err != nil {
		return Manifest{}, fmt.Errorf("内置 schema 无效：%w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(b))
	if err != nil {
		// 通常是 JSON 语法错误。
		return Manifest{}, &ValidationError{Path: name, Problems: []string{err.Error()}}
	}
	if !res.Valid() {
		ve := &ValidationError{Path: name}
		for _, d := range res.Errors() {
			ve.Problems = append(ve.Problems, d.String())
		}
		return Manifest{}, ve
	}

	var fm fileManifest
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&fm); err != nil {
		return Manifest{}, &ValidationError{Path: name, Problems: []string{err.Error()}}
	}

	m := Manifest{UpdateKind: fm.UpdateKind, Items: make([]domain.ItemDescriptor, 0, len(fm.Items))}
	for i, fi := range fm.Items {
		kind, _ := domain.ParseItemKind(fi.Kind)
		it := domain.ItemDescriptor{
			ID:                    fi.ID,
			Kind:                  kind,
			ExtraType:             domain.ExtraType(fi.ExtraType),
			Container:             fi.Container,
			Path:                  resolve(baseDir, fi.Path),
			ContainingFolderPath:  resolve(baseDir, fi.ContainingFolderPath),
			IsInMixedFolder:       fi.InMixedFolder,
			SupportsLocalMetadata: fi.SupportsLocalMetadata == nil || *fi.SupportsLocalMetadata,
			Meta:                  fi.Meta,
		}
		if it.ID == "" {
			it.ID = fmt.Sprintf("#%d", i+1)
		}
		m.Items = append(m.Items, it)
	}
	return m, nil
}

func resolve(baseDir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}
	return filepath.Clean(p)
}
