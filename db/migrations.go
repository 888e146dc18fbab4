// Package db embeds the SQL migrations so binaries and tests share one copy.
package db

import "embed"

// MigrationsDir is the directory inside Migrations holding the SQL files.
const MigrationsDir = "migrations"

// Migrations holds every *.up.sql and *.down.sql file under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS
