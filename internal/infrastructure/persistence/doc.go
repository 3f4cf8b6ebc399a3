// Package persistence stores key catalog metadata with GORM on SQLite or
// PostgreSQL.
package persistence
