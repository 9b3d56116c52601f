package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/vigil/internal/model"
)

func TestUnsafeCallInC(t *testing.T) {
	t.Parallel()

	refs := []model.Reference{call("strcpy", 7, 2)}
	diags := CheckUnsafeCalls(refs, nil, nil, "src/main.c")
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, model.SeverityWarning, d.Severity)
	assert.Equal(t, CodeUnsafeCall, d.Code)
	assert.Contains(t, d.Message, "'strcpy'")
	assert.Contains(t, d.Message, "strncpy")
}

func TestUnsafeIgnoresNonCFiles(t *testing.T) {
	t.Parallel()

	refs := []model.Reference{call("strcpy", 7, 2)}
	assert.Empty(t, CheckUnsafeCalls(refs, nil, nil, "app.py"))
	assert.Empty(t, CheckUnsafeCalls(refs, nil, nil, "notes.txt"))
}

func TestUnsafeIgnoresSafeCallsAndReads(t *testing.T) {
	t.Parallel()

	safe := call("snprintf", 3, 4)
	assert.Empty(t, CheckUnsafeCalls([]model.Reference{safe}, nil, nil, "main.c"))

	// A read of the name is not a call.
	read := model.Reference{Name: "gets", Kind: model.RefRead, Line: 2}
	assert.Empty(t, CheckUnsafeCalls([]model.Reference{read}, nil, nil, "main.c"))
}

func TestUnsafeHeaderFilesAreC(t *testing.T) {
	t.Parallel()

	refs := []model.Reference{call("gets", 1, 1)}
	diags := CheckUnsafeCalls(refs, nil, nil, "include/io.h")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "fgets")
}
