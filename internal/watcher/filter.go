package watcher

import (
	"path/filepath"
	"strings"

	"github.com/suykerbuyk/blue/internal/config"
)

// Filter decides which paths produce notifications.
type Filter struct {
	exts  map[string]bool
	dirs  map[string]bool
	files []string
}

// NewFilter builds a Filter from the monitoring config. An empty extension
// list accepts every extension.
func NewFilter(cfg config.MonitoringConfig) *Filter {
	f := &Filter{
		exts:  make(map[string]bool, len(cfg.SupportedExtensions)),
		dirs:  make(map[string]bool, len(cfg.IgnoreDirectories)),
		files: cfg.IgnoreFiles,
	}
	for _, e := range cfg.SupportedExtensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		f.exts[e] = true
	}
	for _, d := range cfg.IgnoreDirectories {
		f.dirs[d] = true
	}
	return f
}

// IgnoreDir reports whether a directory with this base name is skipped.
func (f *Filter) IgnoreDir(name string) bool {
	return f.dirs[name]
}

// Match reports whether path, relative to or under root, should be watched.
func (f *Filter) Match(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, p := range parts[:len(parts)-1] {
		if f.dirs[p] {
			return false
		}
	}

	base := parts[len(parts)-1]
	for _, pat := range f.files {
		if pat == base {
			return false
		}
		if ok, _ := filepath.Match(pat, base); ok {
			return false
		}
	}

	if len(f.exts) == 0 {
		return true
	}
	return f.exts[strings.ToLower(filepath.Ext(base))]
}
