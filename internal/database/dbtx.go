package database

import (
	"database/sql"
)

// DBTX defines the database operations needed by repositories.
// Every repository call is a single-statement write or read; nothing in the
// pipeline spans a transaction.
type DBTX interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	GetDialect() Dialect
}

// GetDialect returns the database dialect
func (db *DB) GetDialect() Dialect {
	return db.Dialect
}
