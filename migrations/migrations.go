// Package migrations embeds the journal schema migrations so the server and
// the migrate command share one source of truth.
package migrations

import "embed"

// FS holds the numbered up/down SQL files.
//
//go:embed *.sql
var FS embed.FS
