package checker

import (
	"fmt"

	"github.com/jward/vigil/internal/lang"
	"github.com/jward/vigil/internal/model"
)

// CodeUnsafeCall flags calls to C library functions with no bounds checking.
const CodeUnsafeCall = "safety/unsafe-call"

// unsafeFunctions maps known-dangerous C function names to remediation text.
var unsafeFunctions = map[string]string{
	"strcpy":   "use strncpy() or strlcpy() instead",
	"strcat":   "use strncat() or strlcat() instead",
	"sprintf":  "use snprintf() instead",
	"gets":     "use fgets() instead",
	"scanf":    "use fgets() + sscanf() or limit the field width (e.g. %99s)",
	"vsprintf": "use vsnprintf() instead",
	"tmpnam":   "use mkstemp() instead",
}

// CheckUnsafeCalls warns on any call to a known-dangerous C function,
// regardless of argument count. Only applies to files recognized as C.
func CheckUnsafeCalls(bufferRefs []model.Reference, _ []model.Symbol, _ []model.Symbol, currentFile string) []model.Diagnostic {
	l := lang.ForFile(currentFile)
	if l == nil || l.Name != "c" {
		return nil
	}

	var diags []model.Diagnostic
	for _, ref := range bufferRefs {
		if ref.Kind != model.RefCall {
			continue
		}
		suggestion, ok := unsafeFunctions[ref.Name]
		if !ok {
			continue
		}
		diags = append(diags, model.Diagnostic{
			File:     currentFile,
			Line:     ref.Line,
			Severity: model.SeverityWarning,
			Code:     CodeUnsafeCall,
			Message:  fmt.Sprintf("'%s' is unsafe and can cause buffer overflows; %s", ref.Name, suggestion),
		})
	}
	return diags
}
