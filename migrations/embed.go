// Package migrations embeds the PostgreSQL schema applied at startup when the
// postgres backend is selected.
package migrations

import "embed"

// FS holds the *.up.sql and *.down.sql files.
//
//go:embed *.sql
var FS embed.FS
