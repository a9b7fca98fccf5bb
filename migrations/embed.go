// Package migrations embeds the SQL schema files for every database backend.
package migrations

import "embed"

// FS holds sqlite/ (local blob cache) and postgres/ (remote tables).
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
