// Package db provides the embedded database schema.
package db

import _ "embed"

// Schema contains the DDL for the orders_joki table. It is idempotent.
//
//go:embed migrations/001_schema.sql
var Schema string
