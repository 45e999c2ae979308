// Package dialects provides database-specific SQL dialect implementations for
// SQL Server, MySQL, SQLite and PostgreSQL, handling identifier quoting,
// identity retrieval and join support.
package dialects

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedDialect is returned when an unknown dialect is requested.
var ErrUnsupportedDialect = errors.New("unsupported database dialect")

// Provider enumerates the supported database families.
type Provider int

// Supported providers.
const (
	MSSQL Provider = iota + 1
	MySQL
	SQLite
	PostgreSQL
)

// String returns the canonical provider name.
func (p Provider) String() string {
	switch p {
	case MSSQL:
		return "mssql"
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite"
	case PostgreSQL:
		return "postgres"
	default:
		return fmt.Sprintf("provider(%d)", int(p))
	}
}

// Dialect defines database-specific behaviors.
type Dialect interface {
	// Provider reports the database family.
	Provider() Provider
	// QuoteIdentifier wraps a single identifier in the dialect quote pair.
	QuoteIdentifier(string) string
	// IdentitySQL returns the fragment appended to an INSERT to read back the
	// generated identity value. The fragment carries its own leading separator.
	IdentitySQL(column string) string
	// SupportsRightJoin reports whether RIGHT JOIN is available.
	SupportsRightJoin() bool
	// TopClause returns the row-limiting keyword placed after SELECT, if any.
	TopClause(n int) string
	// LimitClause returns the row-limiting clause appended to a SELECT, if any.
	LimitClause(n int) string
}

var dialects = make(map[string]Dialect)

// RegisterDialect registers a database dialect by name or driver alias.
func RegisterDialect(name string, d Dialect) {
	dialects[strings.ToLower(name)] = d
}

// GetDialect retrieves a registered dialect by name or driver alias.
func GetDialect(name string) (Dialect, error) {
	if d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, name)
}

// ForProvider returns the dialect implementing p.
func ForProvider(p Provider) (Dialect, error) {
	switch p {
	case MSSQL:
		return &MSSQLDialect{}, nil
	case MySQL:
		return &MySQLDialect{}, nil
	case SQLite:
		return &SQLiteDialect{}, nil
	case PostgreSQL:
		return &PostgresDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, p)
	}
}

// QuoteQualified quotes each dot-separated part of an identifier.
//
//	PostgreSQL: "public.users" → "public"."users"
//	SQL Server: "dbo.users"    → [dbo].[users]
func QuoteQualified(d Dialect, identifier string) string {
	if !strings.Contains(identifier, ".") {
		return d.QuoteIdentifier(strings.TrimSpace(identifier))
	}
	parts := strings.Split(identifier, ".")
	for i, part := range parts {
		parts[i] = d.QuoteIdentifier(strings.TrimSpace(part))
	}
	return strings.Join(parts, ".")
}
