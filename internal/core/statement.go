package core

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Params maps bound parameter names (without the @ prefix) to values.
type Params map[string]any

// Statement is generated SQL text plus its named parameters. Parameters keep
// the order in which they were bound.
//
// Parameters are written as @Name placeholders, which database/sql drivers
// accepting sql.NamedArg and pgx named arguments both understand.
type Statement struct {
	buf    strings.Builder
	names  []string
	params Params

	timestamp time.Time
	stamped   bool
}

// NewStatement returns an empty statement.
func NewStatement() *Statement {
	return &Statement{params: make(Params)}
}

// SQL returns the statement text.
func (s *Statement) SQL() string {
	return s.buf.String()
}

// String implements fmt.Stringer.
func (s *Statement) String() string {
	return s.SQL()
}

// Params returns a copy of the bound parameters.
func (s *Statement) Params() Params {
	out := make(Params, len(s.params))
	for k, v := range s.params {
		out[k] = v
	}
	return out
}

// Names returns the parameter names in binding order.
func (s *Statement) Names() []string {
	return append([]string(nil), s.names...)
}

// Value returns the value bound to name.
func (s *Statement) Value(name string) (any, bool) {
	v, ok := s.params[name]
	return v, ok
}

// Len returns the number of bound parameters.
func (s *Statement) Len() int {
	return len(s.names)
}

// Args returns the parameters as sql.NamedArg values in binding order, ready
// for (*sql.DB).ExecContext and friends.
func (s *Statement) Args() []any {
	args := make([]any, len(s.names))
	for i, name := range s.names {
		args[i] = sql.Named(name, s.params[name])
	}
	return args
}

// PgxArgs returns the parameters as pgx.StrictNamedArgs, which rewrites the
// @Name placeholders to $n and rejects missing or extra arguments.
func (s *Statement) PgxArgs() pgx.StrictNamedArgs {
	args := make(pgx.StrictNamedArgs, len(s.params))
	for k, v := range s.params {
		args[k] = v
	}
	return args
}

// Timestamp returns the auto-timestamp computed for the statement, if the
// entity has an updated-at column.
func (s *Statement) Timestamp() (time.Time, bool) {
	return s.timestamp, s.stamped
}

// Bind adds a named parameter.
func (s *Statement) Bind(name string, value any) error {
	if _, exists := s.params[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateParam, name)
	}
	if s.params == nil {
		s.params = make(Params)
	}
	s.params[name] = value
	s.names = append(s.names, name)
	return nil
}

// Merge appends other to s, separated by "; ", and adopts its parameters.
// On a parameter name collision s is left unchanged.
func (s *Statement) Merge(other *Statement) error {
	if other == nil {
		return nil
	}
	for _, name := range other.names {
		if _, exists := s.params[name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateParam, name)
		}
	}

	if s.buf.Len() > 0 && other.buf.Len() > 0 {
		s.buf.WriteString("; ")
	}
	s.buf.WriteString(other.SQL())
	for _, name := range other.names {
		_ = s.Bind(name, other.params[name])
	}
	if !s.stamped && other.stamped {
		s.timestamp, s.stamped = other.timestamp, true
	}
	return nil
}

func (s *Statement) write(parts ...string) {
	for _, p := range parts {
		s.buf.WriteString(p)
	}
}

func (s *Statement) stamp(ts time.Time) {
	s.timestamp, s.stamped = ts, true
}
