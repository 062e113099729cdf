// Package db embeds the SQL schema applied on startup. The dashboard runs its
// DDL idempotently through postgres.RunMigrations rather than shipping a
// separate migration tool.
package db

import _ "embed"

// Schema is the full DDL for users, payment settings, and orders.
//
//go:embed migrations/001_schema.sql
var Schema string
