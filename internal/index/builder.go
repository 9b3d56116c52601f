// Package index maintains the repository-wide symbol table: a flat Symbol
// sequence built by walking a repository root, cached as an immutable
// snapshot, and invalidated by source modification times. Overlay merging for
// unsaved editor buffers lives in overlay.go.
package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jward/vigil/internal/lang"
	"github.com/jward/vigil/internal/model"
	"github.com/jward/vigil/internal/store"
)

// ErrInvalidRoot is returned when the requested repository root does not
// exist or is not a directory. Callers treat this as a client error.
var ErrInvalidRoot = errors.New("repository root is not a directory")

// skipDirs are conventional build/dependency/version-control directories
// excluded from the walk.
var skipDirs = map[string]bool{
	".git":         true,
	".venv":        true,
	"venv":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
}

// Snapshot is one immutable build of the repository symbol table. Snapshots
// are replaced wholesale, never mutated, so readers can hold one across a
// request without coordination.
type Snapshot struct {
	Root       string
	BuiltAt    time.Time
	MaxModTime time.Time
	Symbols    []model.Symbol
}

// Builder owns the process-wide symbol index. The current snapshot is
// published through an atomic pointer: a concurrent refresh constructs a new
// snapshot and swaps it in, so an in-flight analyze never observes a
// half-built table.
type Builder struct {
	current atomic.Pointer[Snapshot]
	store   *store.Store
	log     *slog.Logger
	workers int
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithStore enables snapshot persistence: every successful rebuild replaces
// the stored snapshot.
func WithStore(s *store.Store) BuilderOption {
	return func(b *Builder) { b.store = s }
}

// WithLogger sets the builder's logger.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) { b.log = l }
}

// WithWorkers bounds the extraction pool size. Defaults to GOMAXPROCS.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// NewBuilder creates a Builder with no cached snapshot.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		log:     slog.Default(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Current returns the cached snapshot, or nil before the first build.
func (b *Builder) Current() *Snapshot {
	return b.current.Load()
}

// sourceFile is one recognized file discovered during the walk.
type sourceFile struct {
	absPath string
	relPath string
}

// Ensure returns a snapshot for root, rebuilding when the root changed, no
// cached result exists, force is set, or any recognized file is newer than
// the last build. Otherwise the cached snapshot is returned unchanged, so
// repeated requests against an unmodified tree cost one walk for the mtime
// check and nothing more.
func (b *Builder) Ensure(ctx context.Context, root string, force bool) (*Snapshot, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRoot, abs)
	}

	files, maxMod, err := scanTree(abs)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", abs, err)
	}

	cur := b.current.Load()
	if !force && cur != nil && cur.Root == abs && !maxMod.After(cur.MaxModTime) {
		return cur, nil
	}

	// Cold start with a store: a persisted snapshot that still covers the
	// tree avoids re-extracting every file.
	if !force && cur == nil && b.store != nil {
		if snap := b.loadPersisted(abs, maxMod); snap != nil {
			b.current.Store(snap)
			b.log.Info("symbol table loaded from snapshot store", "root", abs, "symbols", len(snap.Symbols))
			return snap, nil
		}
	}

	symbols, err := b.extractAll(ctx, files)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Root:       abs,
		BuiltAt:    time.Now(),
		MaxModTime: maxMod,
		Symbols:    symbols,
	}
	b.current.Store(snap)
	b.log.Info("symbol table built", "root", abs, "files", len(files), "symbols", len(symbols))

	if b.store != nil {
		if err := b.store.ReplaceSnapshot(abs, snap.BuiltAt, maxMod, symbols); err != nil {
			b.log.Warn("snapshot persistence failed", "error", err)
		}
	}

	return snap, nil
}

// loadPersisted returns the stored snapshot when it covers the same root and
// no recognized file has been modified past its recorded build. Any other
// condition, including a read error, falls through to a fresh build.
func (b *Builder) loadPersisted(root string, maxMod time.Time) *Snapshot {
	meta, symbols, ok, err := b.store.LoadSnapshot()
	if err != nil {
		b.log.Warn("persisted snapshot unreadable, rebuilding", "error", err)
		return nil
	}
	if !ok || meta.Root != root || maxMod.After(meta.MaxModTime) {
		return nil
	}
	return &Snapshot{
		Root:       root,
		BuiltAt:    meta.BuiltAt,
		MaxModTime: meta.MaxModTime,
		Symbols:    symbols,
	}
}

// scanTree walks the root collecting recognized files and the maximum
// modification time across them. Unrecognized extensions are skipped
// silently; skipDirs subtrees are pruned.
func scanTree(root string) ([]sourceFile, time.Time, error) {
	var files []sourceFile
	var maxMod time.Time

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if lang.ForFile(path) == nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil // file vanished mid-walk
		}
		if info.ModTime().After(maxMod) {
			maxMod = info.ModTime()
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		files = append(files, sourceFile{absPath: path, relPath: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	return files, maxMod, nil
}

// extractAll runs per-file symbol extraction through a bounded worker pool.
// Results keep walk order so two builds of an unmodified tree produce an
// identical flat sequence.
func (b *Builder) extractAll(ctx context.Context, files []sourceFile) ([]model.Symbol, error) {
	results := make([][]model.Symbol, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(f.absPath)
			if err != nil {
				b.log.Warn("read failed, skipping", "path", f.absPath, "error", err)
				return nil
			}
			// Symbols carry root-relative paths so overlay merging and
			// cross-file lookups key consistently across platforms.
			results[i] = lang.ExtractSymbols(content, f.relPath, "")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	var flat []model.Symbol
	for _, syms := range results {
		flat = append(flat, syms...)
	}
	return flat, nil
}
