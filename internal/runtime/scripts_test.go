package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/vigil/internal/model"
	"github.com/jward/vigil/scripts"
)

// These tests run the shipped checker scripts against synthetic inputs.

func runShipped(t *testing.T, script string, refs []model.Reference, bufSyms, repoSyms []model.Symbol, file string) []model.Diagnostic {
	t.Helper()
	r := NewRuntime(scripts.FS)
	diags, err := r.RunChecker(context.Background(), script, refs, bufSyms, repoSyms, file)
	require.NoError(t, err)
	return diags
}

func TestShippedScriptsAreListed(t *testing.T) {
	t.Parallel()

	r := NewRuntime(scripts.FS)
	paths, err := r.Scripts()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"checks/format.risor",
		"checks/shadow.risor",
		"checks/undefined.risor",
		"checks/unused.risor",
	}, paths)
}

func TestUndefinedScript(t *testing.T) {
	t.Parallel()

	refs := []model.Reference{
		{Name: "mystery", Kind: model.RefRead, Line: 4},
		{Name: "known", Kind: model.RefRead, Line: 5},
		{Name: "print", Kind: model.RefRead, Line: 6}, // builtin, ignored
		{Name: "mystery", Kind: model.RefRead, Line: 9},
	}
	repo := []model.Symbol{{Name: "known", Kind: model.SymbolVariable, FilePath: "utils.py", Line: 1}}

	diags := runShipped(t, "checks/undefined.risor", refs, nil, repo, "app.py")
	require.Len(t, diags, 1) // reported once per name
	assert.Equal(t, "symbols/undefined", diags[0].Code)
	assert.Equal(t, 4, diags[0].Line)
	assert.Contains(t, diags[0].Message, "'mystery'")
}

func TestShadowScript(t *testing.T) {
	t.Parallel()

	bufSyms := []model.Symbol{
		{Name: "total", Kind: model.SymbolVariable, FilePath: "app.py", Line: 5, Scope: "main"},
		{Name: "local_only", Kind: model.SymbolVariable, FilePath: "app.py", Line: 6, Scope: "main"},
	}
	repo := []model.Symbol{
		{Name: "total", Kind: model.SymbolVariable, FilePath: "utils.py", Line: 2, Scope: ""},
	}

	diags := runShipped(t, "checks/shadow.risor", nil, bufSyms, repo, "app.py")
	require.Len(t, diags, 1)
	assert.Equal(t, "symbols/shadowed", diags[0].Code)
	assert.Equal(t, 5, diags[0].Line)
	assert.Contains(t, diags[0].Message, "utils.py:2")
}

func TestShadowScriptIgnoresSameFile(t *testing.T) {
	t.Parallel()

	bufSyms := []model.Symbol{
		{Name: "total", Kind: model.SymbolVariable, FilePath: "app.py", Line: 5, Scope: "main"},
	}
	repo := []model.Symbol{
		{Name: "total", Kind: model.SymbolVariable, FilePath: "app.py", Line: 1, Scope: ""},
	}
	diags := runShipped(t, "checks/shadow.risor", nil, bufSyms, repo, "app.py")
	assert.Empty(t, diags)
}

func TestFormatScript(t *testing.T) {
	t.Parallel()

	refs := []model.Reference{
		{Name: "printf", Kind: model.RefCall, Line: 3, ArgCount: model.IntPtr(0)},
		{Name: "printf", Kind: model.RefCall, Line: 4, ArgCount: model.IntPtr(2)},
		{Name: "sprintf", Kind: model.RefCall, Line: 5, ArgCount: model.IntPtr(1)},
	}
	diags := runShipped(t, "checks/format.risor", refs, nil, nil, "main.c")
	require.Len(t, diags, 2)
	assert.Equal(t, "format/specifier-count", diags[0].Code)
	assert.Equal(t, 3, diags[0].Line)
	assert.Equal(t, 5, diags[1].Line)
}

func TestUnusedScript(t *testing.T) {
	t.Parallel()

	bufSyms := []model.Symbol{
		{Name: "orphan", Kind: model.SymbolVariable, FilePath: "core.c", Line: 2, Scope: ""},
		{Name: "used", Kind: model.SymbolVariable, FilePath: "core.c", Line: 3, Scope: ""},
		{Name: "inner", Kind: model.SymbolVariable, FilePath: "core.c", Line: 9, Scope: "main"},
		{Name: "helper", Kind: model.SymbolFunction, FilePath: "core.c", Line: 12, Scope: ""},
	}
	refs := []model.Reference{
		{Name: "used", Kind: model.RefRead, Line: 20},
	}
	diags := runShipped(t, "checks/unused.risor", refs, bufSyms, nil, "core.c")
	require.Len(t, diags, 1)
	assert.Equal(t, "symbols/unused-extern", diags[0].Code)
	assert.Equal(t, 2, diags[0].Line)
	assert.Contains(t, diags[0].Message, "'orphan'")
}

func TestUnusedScriptFlagsDeadImports(t *testing.T) {
	t.Parallel()

	bufSyms := []model.Symbol{
		{Name: "os", Kind: model.SymbolVariable, Type: "module", FilePath: "app.py", Line: 1, Scope: ""},
		{Name: "json", Kind: model.SymbolVariable, Type: "module", FilePath: "app.py", Line: 2, Scope: ""},
	}
	refs := []model.Reference{
		{Name: "json", Kind: model.RefRead, Line: 5},
	}

	diags := runShipped(t, "checks/unused.risor", refs, bufSyms, nil, "app.py")
	require.Len(t, diags, 1)
	assert.Equal(t, "symbols/unused-extern", diags[0].Code)
	assert.Equal(t, 1, diags[0].Line)
	assert.Contains(t, diags[0].Message, "'os' is imported but never used")
}
