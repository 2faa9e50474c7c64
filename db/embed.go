// Package db holds the schema migrations applied by `syncd migrate`.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
