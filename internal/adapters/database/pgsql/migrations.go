package pgsql

import "embed"

// Migrations holds the schema migrations for the postgres driver.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the files.
const MigrationsDir = "migrations"
