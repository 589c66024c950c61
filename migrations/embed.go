// Package migrations holds the versioned schema for each supported database.
package migrations

import "embed"

// FS contains sqlite/NNN_name.sql and postgres/NNN_name.sql.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
