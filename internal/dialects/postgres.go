package dialects

import (
	"strconv"

	"github.com/lib/pq"
)

// PostgresDialect implements PostgreSQL-specific SQL dialect.
type PostgresDialect struct{}

func init() {
	RegisterDialect("postgres", &PostgresDialect{})
	RegisterDialect("postgresql", &PostgresDialect{})
	RegisterDialect("pgx", &PostgresDialect{})
}

// Provider returns PostgreSQL.
func (d *PostgresDialect) Provider() Provider {
	return PostgreSQL
}

// QuoteIdentifier quotes a PostgreSQL identifier using double quotes.
func (d *PostgresDialect) QuoteIdentifier(s string) string {
	return pq.QuoteIdentifier(s)
}

// IdentitySQL returns the identity column from the INSERT itself.
func (d *PostgresDialect) IdentitySQL(column string) string {
	return " RETURNING " + column
}

// SupportsRightJoin returns true.
func (d *PostgresDialect) SupportsRightJoin() bool {
	return true
}

// TopClause returns nothing, PostgreSQL limits with LIMIT.
func (d *PostgresDialect) TopClause(_ int) string {
	return ""
}

// LimitClause returns " LIMIT n".
func (d *PostgresDialect) LimitClause(n int) string {
	return " LIMIT " + strconv.Itoa(n)
}
