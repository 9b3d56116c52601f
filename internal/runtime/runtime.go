// Package runtime embeds a Risor VM for the auxiliary checkers. Their rules
// are deliberately external to the Go core: each checker is a .risor script
// that receives the same inputs as a built-in checker and reports findings
// through an emit host function.
package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/risor-io/risor"

	"github.com/jward/vigil/internal/model"
)

// Runtime loads and evaluates checker scripts from an fs.FS (normally the
// embedded scripts filesystem).
type Runtime struct {
	fsys fs.FS
}

// NewRuntime creates a Runtime reading scripts from fsys.
func NewRuntime(fsys fs.FS) *Runtime {
	return &Runtime{fsys: fsys}
}

// Scripts lists the checker script paths in the filesystem, sorted for a
// stable pipeline order.
func (r *Runtime) Scripts() ([]string, error) {
	var paths []string
	err := fs.WalkDir(r.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".risor") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("runtime: listing scripts: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// RunChecker evaluates one checker script against the given inputs and
// returns whatever diagnostics it emitted. Scripts see the globals
// buffer_refs, buffer_symbols, repo_symbols, current_file, and emit.
func (r *Runtime) RunChecker(ctx context.Context, scriptPath string, bufferRefs []model.Reference, bufferSymbols []model.Symbol, repoSymbols []model.Symbol, currentFile string) ([]model.Diagnostic, error) {
	src, err := fs.ReadFile(r.fsys, scriptPath)
	if err != nil {
		return nil, fmt.Errorf("runtime: loading script %s: %w", scriptPath, err)
	}
	return r.runSource(ctx, string(src), scriptPath, bufferRefs, bufferSymbols, repoSymbols, currentFile)
}

// RunSource evaluates checker source directly. Useful for testing without
// script files.
func (r *Runtime) RunSource(ctx context.Context, source string, bufferRefs []model.Reference, bufferSymbols []model.Symbol, repoSymbols []model.Symbol, currentFile string) ([]model.Diagnostic, error) {
	return r.runSource(ctx, source, "<inline>", bufferRefs, bufferSymbols, repoSymbols, currentFile)
}

func (r *Runtime) runSource(ctx context.Context, source, label string, bufferRefs []model.Reference, bufferSymbols []model.Symbol, repoSymbols []model.Symbol, currentFile string) ([]model.Diagnostic, error) {
	var emitted []model.Diagnostic

	opts := []risor.Option{
		risor.WithGlobal("buffer_refs", referenceMaps(bufferRefs)),
		risor.WithGlobal("buffer_symbols", symbolMaps(bufferSymbols)),
		risor.WithGlobal("repo_symbols", symbolMaps(repoSymbols)),
		risor.WithGlobal("current_file", currentFile),
		risor.WithGlobal("emit", makeEmitFn(currentFile, &emitted)),
	}

	if _, err := risor.Eval(ctx, source, opts...); err != nil {
		return nil, fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return emitted, nil
}
