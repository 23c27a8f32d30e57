// Package migrations embeds the goose migrations for the secondary
// analytical store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
