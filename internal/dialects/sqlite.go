package dialects

import "strconv"

// SQLiteDialect implements SQLite-specific SQL dialect.
type SQLiteDialect struct{}

func init() {
	RegisterDialect("sqlite", &SQLiteDialect{})
	RegisterDialect("sqlite3", &SQLiteDialect{})
}

// Provider returns SQLite.
func (d *SQLiteDialect) Provider() Provider {
	return SQLite
}

// QuoteIdentifier returns s unchanged; identifiers are never quoted for SQLite.
func (d *SQLiteDialect) QuoteIdentifier(s string) string {
	return s
}

// IdentitySQL reads the last inserted rowid in a second statement.
func (d *SQLiteDialect) IdentitySQL(column string) string {
	return "; SELECT LAST_INSERT_ROWID() AS " + column
}

// SupportsRightJoin returns false.
func (d *SQLiteDialect) SupportsRightJoin() bool {
	return false
}

// TopClause returns nothing, SQLite limits with LIMIT.
func (d *SQLiteDialect) TopClause(_ int) string {
	return ""
}

// LimitClause returns " LIMIT n".
func (d *SQLiteDialect) LimitClause(n int) string {
	return " LIMIT " + strconv.Itoa(n)
}
