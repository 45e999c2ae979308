package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// JoinKind is the kind of a navigation join.
type JoinKind int

// Join kinds.
const (
	InnerJoin JoinKind = iota + 1
	LeftJoin
	RightJoin
	CrossJoin
)

// ParseJoinKind parses inner, left, right or cross (case-insensitive).
func ParseJoinKind(s string) (JoinKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inner":
		return InnerJoin, nil
	case "left":
		return LeftJoin, nil
	case "right":
		return RightJoin, nil
	case "cross":
		return CrossJoin, nil
	default:
		return 0, fmt.Errorf("%w: unknown join kind %q", ErrMetadata, s)
	}
}

// String returns the lower-case kind name.
func (k JoinKind) String() string {
	switch k {
	case InnerJoin:
		return "inner"
	case LeftJoin:
		return "left"
	case RightJoin:
		return "right"
	case CrossJoin:
		return "cross"
	default:
		return fmt.Sprintf("join(%d)", int(k))
	}
}

// Keyword returns the SQL keyword pair for the join kind.
func (k JoinKind) Keyword() string {
	switch k {
	case InnerJoin:
		return "INNER JOIN"
	case LeftJoin:
		return "LEFT JOIN"
	case RightJoin:
		return "RIGHT JOIN"
	case CrossJoin:
		return "CROSS JOIN"
	default:
		return ""
	}
}

// Join describes how a navigation field is fetched from a related table
// within a single SELECT.
type Join struct {
	// Field is the navigation field on the owning entity.
	Field string
	Kind  JoinKind
	// Table and Schema name the joined table.
	Table  string
	Schema string
	// Alias names the joined table inside the statement.
	Alias string
	// Key is the owning table column, ExternalKey the joined table column.
	Key         string
	ExternalKey string
	// Target is the joined record type (slice element type for collections),
	// nil for definition-based entities.
	Target reflect.Type
	// Many reports a collection navigation field.
	Many bool
	// Properties are the joined table's scalar columns in field order.
	Properties []*Property
}

// JoinProperty pairs a join with one of its owned-side columns.
type JoinProperty struct {
	Join     *Join
	Property *Property
}

// Columns flattens joins into one JoinProperty per joined scalar column.
func Columns(joins []*Join) []JoinProperty {
	var out []JoinProperty
	for _, j := range joins {
		for _, p := range j.Properties {
			out = append(out, JoinProperty{Join: j, Property: p})
		}
	}
	return out
}

// ResolveJoins returns the joins requested by navigation field name, in
// request order. A requested field that exists but carries no join metadata
// is skipped silently; a name that is not a field at all is an error.
func ResolveJoins(d *Descriptor, fields ...string) ([]*Join, error) {
	joins := make([]*Join, 0, len(fields))
	seen := make(map[string]bool, len(fields))

	for _, name := range fields {
		if seen[name] {
			continue
		}
		seen[name] = true

		j, isNav := d.navigation[name]
		if !isNav {
			if _, isProp := d.byName[name]; isProp {
				continue
			}
			return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, d.Name, name)
		}
		if j == nil {
			continue
		}
		joins = append(joins, j)
	}

	return joins, nil
}

// buildJoin resolves join metadata for a navigation field of type t.
func buildJoin(field string, t reflect.Type, jt joinTag) (*Join, error) {
	j := &Join{
		Field:       field,
		Kind:        jt.Kind,
		Table:       jt.Table,
		Schema:      jt.Schema,
		Alias:       jt.Alias,
		Key:         jt.Key,
		ExternalKey: jt.ExternalKey,
	}

	target := t
	if target.Kind() == reflect.Slice || target.Kind() == reflect.Array {
		target = target.Elem()
		j.Many = true
	}
	for target.Kind() == reflect.Ptr {
		target = target.Elem()
	}
	if target.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: join field %s must reference a struct, got %s", ErrMetadata, field, t)
	}
	j.Target = target

	if j.Table == "" {
		j.Table = tableNameOf(target)
	}
	if j.Schema == "" {
		j.Schema = tableSchemaOf(target)
	}
	j.Table, j.Schema = splitQualified(j.Table, j.Schema)
	if j.Alias == "" {
		j.Alias = field
	}

	props, err := scalarProperties(target)
	if err != nil {
		return nil, fmt.Errorf("join field %s: %w", field, err)
	}
	j.Properties = props

	return j, validateJoin(j)
}

// validateJoin checks keys and identifiers of a resolved join.
func validateJoin(j *Join) error {
	if j.Kind != CrossJoin && (j.Key == "" || j.ExternalKey == "") {
		return fmt.Errorf("%w: join field %s needs key and ref", ErrMetadata, j.Field)
	}

	checks := []struct{ kind, name string }{
		{"table", j.Table},
		{"alias", j.Alias},
	}
	if j.Schema != "" {
		checks = append(checks, struct{ kind, name string }{"schema", j.Schema})
	}
	if j.Kind != CrossJoin {
		checks = append(checks,
			struct{ kind, name string }{"join key", j.Key},
			struct{ kind, name string }{"join ref", j.ExternalKey},
		)
	}
	for _, c := range checks {
		if err := identifiers.ValidateIdentifier(c.kind, c.name); err != nil {
			return fmt.Errorf("%w: join field %s: %v", ErrMetadata, j.Field, err)
		}
	}
	if len(j.Properties) == 0 {
		return fmt.Errorf("%w: join field %s has no scalar columns", ErrMetadata, j.Field)
	}

	return nil
}
