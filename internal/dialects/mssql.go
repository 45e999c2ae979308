package dialects

import (
	"strconv"
	"strings"
)

// MSSQLDialect implements SQL Server-specific SQL dialect.
type MSSQLDialect struct{}

func init() {
	RegisterDialect("mssql", &MSSQLDialect{})
	RegisterDialect("sqlserver", &MSSQLDialect{})
}

// Provider returns MSSQL.
func (d *MSSQLDialect) Provider() Provider {
	return MSSQL
}

// QuoteIdentifier quotes a SQL Server identifier using square brackets.
func (d *MSSQLDialect) QuoteIdentifier(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}

// IdentitySQL reads the identity generated in the current scope.
func (d *MSSQLDialect) IdentitySQL(column string) string {
	return " SELECT SCOPE_IDENTITY() AS " + column
}

// SupportsRightJoin returns true.
func (d *MSSQLDialect) SupportsRightJoin() bool {
	return true
}

// TopClause returns "TOP n".
func (d *MSSQLDialect) TopClause(n int) string {
	return "TOP " + strconv.Itoa(n)
}

// LimitClause returns nothing, SQL Server limits with TOP.
func (d *MSSQLDialect) LimitClause(_ int) string {
	return ""
}
