// Package migrations holds the numbered schema files applied by the SQLite store.
package migrations

import "embed"

// FS holds every NNN_name.up.sql file, applied in file-name order.
//
//go:embed *.up.sql
var FS embed.FS
