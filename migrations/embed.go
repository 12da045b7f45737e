package migrations

import "embed"

// Files exposes embedded SQL migration files. Postgres migrations live at the
// top level and are applied lexicographically; sqlite/ holds the SQLite
// variants.
//
//go:embed *.sql sqlite/*.sql
var Files embed.FS
