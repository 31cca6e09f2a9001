// Package migrations carries the schema migration files compiled into the
// binary, so the API server needs no migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
