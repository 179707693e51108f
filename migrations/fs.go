// Package migrations embeds SQL migrations for the local cache schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
