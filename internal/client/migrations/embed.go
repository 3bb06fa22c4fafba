// Package migrations embeds the goose SQL migrations of the local cache DB.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
