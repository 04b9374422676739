// Package migrations holds the embedded SQL schema migrations applied
// at startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
