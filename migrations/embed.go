// Package migrations embeds the SQL migration files into the binary.
package migrations

import "embed"

// FS holds the *.sql migrations at its root, for database.DB.Migrate.
//
//go:embed *.sql
var FS embed.FS
