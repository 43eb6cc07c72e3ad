// Package migrations embeds the upload-log schema for goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
