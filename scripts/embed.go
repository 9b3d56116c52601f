// Package scripts embeds the auxiliary checker scripts shipped with the
// binary. Each script follows the same contract as a built-in checker; its
// rules are best-effort and replaceable without touching the Go core.
package scripts

import "embed"

//go:embed checks/*.risor
var FS embed.FS
