// Package migrations embeds the goose migrations of the sqlite kv driver.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
