// Package migrations embeds the SQL schema migrations for postgres.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
