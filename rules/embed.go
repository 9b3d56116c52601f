// Package rules carries the machine-readable catalog of every diagnostic
// the analyzer can produce.
package rules

import _ "embed"

//go:embed rules.json
var Catalog []byte
