package saver

import (
	"github.com/John-Robertt/NFOSaver/internal/domain"
	"github.com/John-Robertt/NFOSaver/internal/paths"
)

// BoxSet 写合集的 <collection>（只有通用字段）。
func BoxSet() *Saver {
	return &Saver{
		Name:        "boxset",
		EnabledFunc: kindGate(domain.KindBoxSet),
		PathsFunc:   paths.BoxSet,
		RootFunc:    fixedRoot("collection"),
	}
}
