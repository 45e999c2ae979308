package dialects

import (
	"strconv"
	"strings"
)

// MySQLDialect implements MySQL-specific SQL dialect.
type MySQLDialect struct{}

// Provider returns MySQL.
func (d *MySQLDialect) Provider() Provider {
	return MySQL
}

// QuoteIdentifier quotes a MySQL identifier using backticks.
func (d *MySQLDialect) QuoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// IdentitySQL reads LAST_INSERT_ID() as a signed integer in a second statement.
func (d *MySQLDialect) IdentitySQL(column string) string {
	return "; SELECT CONVERT(LAST_INSERT_ID(), SIGNED INTEGER) AS " + column
}

// SupportsRightJoin returns true.
func (d *MySQLDialect) SupportsRightJoin() bool {
	return true
}

// TopClause returns nothing, MySQL limits with LIMIT.
func (d *MySQLDialect) TopClause(_ int) string {
	return ""
}

// LimitClause returns " LIMIT n".
func (d *MySQLDialect) LimitClause(n int) string {
	return " LIMIT " + strconv.Itoa(n)
}

func init() {
	RegisterDialect("mysql", &MySQLDialect{})
}
