// Package db embeds the SQL migrations for every supported dialect.
//
// Migrations live under migrations/<dialect>/ and follow golang-migrate's
// {version}_{title}.{up|down}.sql naming.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
