// Package migrations embeds the SQL schema migrations applied by cmd/migrate.
package migrations

import "embed"

// FS holds every NNNNNN_name.up.sql and .down.sql file in this directory
//
//go:embed *.sql
var FS embed.FS
