// Package migrations embeds the inventory schema migrations applied at database open.
package migrations

import "embed"

// Files holds the numbered up/down SQL files consumed by golang-migrate.
//
//go:embed *.sql
var Files embed.FS
