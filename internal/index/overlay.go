package index

import (
	"path/filepath"
	"strings"

	"github.com/jward/vigil/internal/lang"
	"github.com/jward/vigil/internal/model"
)

// BufferFile is the unsaved content of an open editor buffer.
type BufferFile struct {
	Path    string `json:"file_path"`
	Content string `json:"content"`
}

// NormalizeRel rewrites path relative to root with forward-slash separators,
// matching the keys the Builder records. Paths outside the root (or already
// relative) pass through with only separator normalization.
func NormalizeRel(root, path string) string {
	if filepath.IsAbs(path) && root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

// MergeOverlays produces the request-scoped working symbol set: repo symbols
// for files with live unsaved buffers are dropped and replaced by symbols
// re-extracted from the live content. The input slice is never mutated.
func MergeOverlays(repoSymbols []model.Symbol, root string, buffers []BufferFile) []model.Symbol {
	if len(buffers) == 0 {
		return repoSymbols
	}

	overlayFiles := make(map[string]bool, len(buffers))
	var fresh []model.Symbol
	for _, buf := range buffers {
		rel := NormalizeRel(root, buf.Path)
		overlayFiles[rel] = true
		for _, sym := range lang.ExtractSymbols([]byte(buf.Content), rel, "") {
			sym.FilePath = rel
			fresh = append(fresh, sym)
		}
	}

	merged := make([]model.Symbol, 0, len(repoSymbols)+len(fresh))
	for _, sym := range repoSymbols {
		if overlayFiles[filepath.ToSlash(sym.FilePath)] {
			continue
		}
		merged = append(merged, sym)
	}
	return append(merged, fresh...)
}
