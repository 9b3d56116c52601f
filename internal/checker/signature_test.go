package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/vigil/internal/model"
)

func fnDecl(name, file string, line int, params ...model.Param) model.Symbol {
	return model.Symbol{
		Name:     name,
		Kind:     model.SymbolFunction,
		FilePath: file,
		Line:     line,
		Params:   params,
	}
}

func call(name string, line, args int) model.Reference {
	return model.Reference{
		Name:     name,
		Kind:     model.RefCall,
		Line:     line,
		ArgCount: model.IntPtr(args),
	}
}

func TestSignatureRangeWithDefaults(t *testing.T) {
	t.Parallel()

	// greet(name, greeting="Hello") accepts 1 or 2 arguments.
	repo := []model.Symbol{fnDecl("greet", "utils.py", 7,
		model.Param{Name: "name"},
		model.Param{Name: "greeting", HasDefault: true},
	)}

	assert.Empty(t, CheckSignatureDrift([]model.Reference{call("greet", 1, 1)}, nil, repo, "app.py"))
	assert.Empty(t, CheckSignatureDrift([]model.Reference{call("greet", 1, 2)}, nil, repo, "app.py"))

	diags := CheckSignatureDrift([]model.Reference{call("greet", 4, 3)}, nil, repo, "app.py")
	require.Len(t, diags, 1)
	assert.Equal(t, model.SeverityWarning, diags[0].Severity)
	assert.Equal(t, CodeSignatureDrift, diags[0].Code)
	assert.Equal(t, "'greet' expects 1 to 2 argument(s) but 3 provided (declared in utils.py:7)", diags[0].Message)

	// Too few arguments trips the same range.
	diags = CheckSignatureDrift([]model.Reference{call("greet", 2, 0)}, nil, repo, "app.py")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "1 to 2")
	assert.Contains(t, diags[0].Message, "0 provided")
}

func TestSignatureExactCount(t *testing.T) {
	t.Parallel()

	repo := []model.Symbol{fnDecl("total", "utils.py", 11,
		model.Param{Name: "a"}, model.Param{Name: "b"}, model.Param{Name: "c"},
	)}

	diags := CheckSignatureDrift([]model.Reference{call("total", 2, 2)}, nil, repo, "app.py")
	require.Len(t, diags, 1)
	assert.Equal(t, "'total' expects 3 argument(s) but 2 provided (declared in utils.py:11)", diags[0].Message)

	assert.Empty(t, CheckSignatureDrift([]model.Reference{call("total", 2, 3)}, nil, repo, "app.py"))
}

func TestSignatureVariadicAcceptsAnyCount(t *testing.T) {
	t.Parallel()

	v := fnDecl("log_all", "utils.py", 1, model.Param{Name: "args"})
	v.IsVariadic = true
	repo := []model.Symbol{v}

	for _, n := range []int{0, 1, 9} {
		assert.Empty(t, CheckSignatureDrift([]model.Reference{call("log_all", 1, n)}, nil, repo, "app.py"))
	}
}

func TestSignatureSameFileDefinitionPreferred(t *testing.T) {
	t.Parallel()

	repo := []model.Symbol{
		fnDecl("helper", "other.py", 1, model.Param{Name: "a"}),
		fnDecl("helper", "app.py", 9, model.Param{Name: "a"}, model.Param{Name: "b"}),
	}

	// Two args match the same-file definition even though the other file's
	// one-arg definition came first.
	assert.Empty(t, CheckSignatureDrift([]model.Reference{call("helper", 3, 2)}, nil, repo, "app.py"))

	diags := CheckSignatureDrift([]model.Reference{call("helper", 3, 5)}, nil, repo, "app.py")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "app.py:9")
}

func TestSignatureSkipsUnresolvable(t *testing.T) {
	t.Parallel()

	repo := []model.Symbol{fnDecl("total", "utils.py", 11, model.Param{Name: "a"})}

	// Unknown function.
	assert.Empty(t, CheckSignatureDrift([]model.Reference{call("mystery", 1, 5)}, nil, repo, "app.py"))

	// Call without a known argument count.
	ref := model.Reference{Name: "total", Kind: model.RefCall, Line: 1}
	assert.Empty(t, CheckSignatureDrift([]model.Reference{ref}, nil, repo, "app.py"))

	// Reads of a function name are not calls.
	read := model.Reference{Name: "total", Kind: model.RefRead, Line: 1, ArgCount: model.IntPtr(9)}
	assert.Empty(t, CheckSignatureDrift([]model.Reference{read}, nil, repo, "app.py"))
}
