// Package migrations embeds the SQL files for the audit database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
