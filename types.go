package vigil

import (
	"github.com/jward/vigil/internal/index"
	"github.com/jward/vigil/internal/model"
)

// Public type aliases for internal types used in the Engine API. These are
// Go type aliases (=), identical to the internal types at compile time, so
// external consumers need no conversion.

type Symbol = model.Symbol
type Param = model.Param
type Reference = model.Reference
type Diagnostic = model.Diagnostic
type Severity = model.Severity
type BufferFile = index.BufferFile
type Snapshot = index.Snapshot
