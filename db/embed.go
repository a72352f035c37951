// Package db embeds the orders schema applied by the migrate command.
package db

import _ "embed"

// OrdersSchema creates the orders table and its indexes. Safe to apply repeatedly.
//
//go:embed migrations/001_schema.sql
var OrdersSchema string
