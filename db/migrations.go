// Package db embeds the control-plane schema migrations so production
// builds can run them without shipping loose SQL files.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
