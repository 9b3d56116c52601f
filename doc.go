// Package vigil provides cross-file static-consistency checking for Python
// and C built on tree-sitter. It compares an in-progress edit buffer against
// a repository-wide symbol table to flag type mismatches, out-of-bounds array
// access, call-signature drift, and unsafe API usage.
//
// # Pipeline
//
// An analysis request flows through four stages:
//
//  1. Index: walk the repository root, parse every recognized file with
//     tree-sitter, and aggregate the extracted symbols into an immutable
//     snapshot. Snapshots are cached and rebuilt only when a source file's
//     modification time moves past the last build.
//
//  2. Overlay: re-extract symbols from any unsaved editor buffers and
//     substitute them for the stale on-disk entries, request-scoped only.
//
//  3. Check: run the built-in checkers (type consistency, array bounds,
//     signature drift, unsafe calls) plus the embedded Risor checker scripts,
//     each a pure function of the buffer's references and symbols, the merged
//     repository symbols, and the current file path.
//
//  4. Aggregate: deduplicate the combined diagnostics by (file, line, code,
//     message), preserving first-emission order.
//
// # Usage
//
// Create an Engine, then analyze buffers against a repository:
//
//	e, err := vigil.New("vigil.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	ctx := context.Background()
//	res, err := e.Analyze(ctx, vigil.AnalyzeRequest{
//		Content:  buffer,
//		FilePath: "src/main.c",
//		RepoPath: "path/to/project",
//	})
//	for _, d := range res.Diagnostics { ... }
//
// Pass an empty dbPath to disable snapshot persistence; the index then lives
// only in memory.
package vigil
