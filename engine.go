package vigil

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jward/vigil/internal/checker"
	"github.com/jward/vigil/internal/index"
	"github.com/jward/vigil/internal/lang"
	"github.com/jward/vigil/internal/model"
	"github.com/jward/vigil/internal/runtime"
	"github.com/jward/vigil/internal/store"
	"github.com/jward/vigil/scripts"
)

// Engine orchestrates the vigil pipeline: repository indexing, buffer
// extraction, overlay merging, the checker pipeline, and aggregation.
type Engine struct {
	builder *index.Builder
	runtime *runtime.Runtime
	store   *store.Store
	log     *slog.Logger

	checkers  []checker.Func
	scriptsFS fs.FS
	workers   int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the Engine's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithWorkers bounds the index builder's extraction pool. Zero means one
// worker per CPU.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithScriptsFS configures the Engine to load checker scripts from the given
// filesystem instead of the embedded defaults. Useful for testing and for
// site-local rules.
func WithScriptsFS(fsys fs.FS) Option {
	return func(e *Engine) { e.scriptsFS = fsys }
}

// New creates an Engine. When dbPath is non-empty it is backed by a SQLite
// database there and every successful index rebuild replaces the persisted
// snapshot; an empty dbPath keeps the index in memory only.
func New(dbPath string, opts ...Option) (*Engine, error) {
	e := &Engine{
		log:       slog.Default(),
		checkers:  checker.BuiltIn(),
		scriptsFS: scripts.FS,
	}
	for _, opt := range opts {
		opt(e)
	}

	if dbPath != "" {
		s, err := store.NewStore(dbPath)
		if err != nil {
			return nil, fmt.Errorf("vigil: create store: %w", err)
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, fmt.Errorf("vigil: migrate: %w", err)
		}
		e.store = s
	}

	builderOpts := []index.BuilderOption{index.WithLogger(e.log)}
	if e.store != nil {
		builderOpts = append(builderOpts, index.WithStore(e.store))
	}
	if e.workers > 0 {
		builderOpts = append(builderOpts, index.WithWorkers(e.workers))
	}
	e.builder = index.NewBuilder(builderOpts...)
	e.runtime = runtime.NewRuntime(e.scriptsFS)

	return e, nil
}

// Close releases the Engine's database resources, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// AnalyzeRequest describes one buffer analysis. Content is the full unsaved
// buffer text; FilePath locates it; RepoPath is the repository root providing
// cross-file context. Language overrides extension-based detection when set.
// OpenBuffers carries the unsaved content of other open files so cross-file
// checks see live declarations instead of stale on-disk ones.
type AnalyzeRequest struct {
	Content     string       `json:"content"`
	FilePath    string       `json:"file_path"`
	RepoPath    string       `json:"repo_path"`
	Language    string       `json:"language,omitempty"`
	OpenBuffers []BufferFile `json:"open_buffers,omitempty"`
}

// AnalyzeResult is the outcome of one buffer analysis. File is the analyzed
// path normalized relative to the repository root.
type AnalyzeResult struct {
	File        string       `json:"file"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Analyze runs the full pipeline for one buffer: ensure the repository
// snapshot is fresh, merge open-buffer overlays, extract the buffer's symbols
// and references, run every checker, and aggregate.
//
// Returns index.ErrInvalidRoot (wrapped) when RepoPath is not a directory. A
// failing checker script is logged and skipped; it never fails the request.
func (e *Engine) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	snap, err := e.builder.Ensure(ctx, req.RepoPath, false)
	if err != nil {
		return nil, err
	}
	repoSymbols := index.MergeOverlays(snap.Symbols, snap.Root, req.OpenBuffers)

	currentFile := index.NormalizeRel(snap.Root, req.FilePath)
	source := []byte(req.Content)
	bufferSymbols := lang.ExtractSymbols(source, currentFile, req.Language)
	bufferRefs := lang.ExtractReferences(source, currentFile, req.Language)

	var all []model.Diagnostic
	for _, check := range e.checkers {
		all = append(all, check(bufferRefs, bufferSymbols, repoSymbols, currentFile)...)
	}

	scriptPaths, err := e.runtime.Scripts()
	if err != nil {
		e.log.Warn("listing checker scripts failed", "error", err)
	}
	for _, path := range scriptPaths {
		diags, err := e.runtime.RunChecker(ctx, path, bufferRefs, bufferSymbols, repoSymbols, currentFile)
		if err != nil {
			// A broken script must not take down the whole pipeline.
			e.log.Warn("checker script failed", "script", path, "error", err)
			continue
		}
		all = append(all, diags...)
	}

	result := &AnalyzeResult{
		File:        currentFile,
		Diagnostics: checker.Aggregate(all),
	}
	e.log.Info("analyze", "file", currentFile, "refs", len(bufferRefs), "diagnostics", len(result.Diagnostics))
	return result, nil
}

// Refresh rebuilds the repository snapshot unconditionally and returns it.
func (e *Engine) Refresh(ctx context.Context, root string) (*Snapshot, error) {
	return e.builder.Ensure(ctx, root, true)
}

// Snapshot returns a fresh-enough snapshot for root, rebuilding only when
// stale.
func (e *Engine) Snapshot(ctx context.Context, root string) (*Snapshot, error) {
	return e.builder.Ensure(ctx, root, false)
}

// Graph returns the repository graph projection for root.
func (e *Engine) Graph(ctx context.Context, root string) (*Graph, error) {
	snap, err := e.builder.Ensure(ctx, root, false)
	if err != nil {
		return nil, err
	}
	return BuildGraph(snap.Symbols), nil
}
