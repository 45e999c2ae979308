package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coregx/sqlgen/internal/schema"
)

// insertColumns returns the INSERT column list: every property except the
// identity and noinsert columns.
func insertColumns(d *schema.Descriptor) ([]*schema.Property, error) {
	props := make([]*schema.Property, 0, len(d.Properties))
	for _, p := range d.Properties {
		if p.Identity || p.IgnoreInsert {
			continue
		}
		props = append(props, p)
	}
	if len(props) == 0 {
		return nil, fmt.Errorf("%w: %s has no insertable columns", ErrMetadata, d.Name)
	}
	return props, nil
}

func (g *Generator) columnList(props []*schema.Property) string {
	cols := make([]string, len(props))
	for i, p := range props {
		cols[i] = g.ident(p.Column)
	}
	return strings.Join(cols, ", ")
}

func valueList(props []*schema.Property, suffix string) string {
	vals := make([]string, len(props))
	for i, p := range props {
		vals[i] = "@" + p.Name + suffix
	}
	return "(" + strings.Join(vals, ", ") + ")"
}

// Insert returns an INSERT for entity. When the entity has an identity
// column the dialect's identity read-back is appended.
//
// An updated-at column is bound to a freshly computed timestamp; entity is
// not modified. Use Statement.Timestamp or ApplyTimestamp to read it back.
//
//	INSERT INTO Products (Name, Price) VALUES (@Name, @Price) SELECT SCOPE_IDENTITY() AS Id
func (g *Generator) Insert(entity any) (*Statement, error) {
	d, err := describe(entity)
	c := &call{op: OpInsert, desc: d, rows: 1}
	return g.observe(c, func() (*Statement, error) {
		if err != nil {
			return nil, err
		}
		props, err := insertColumns(d)
		if err != nil {
			return nil, err
		}

		stmt := NewStatement()
		ts := g.timestamp(d)
		if err := bindRow(stmt, d, entity, props, "", ts); err != nil {
			return nil, err
		}
		if ts != nil {
			stmt.stamp(*ts)
		}

		stmt.write("INSERT INTO ", g.tableRef(d.Table, d.Schema),
			" (", g.columnList(props), ") VALUES ", valueList(props, ""))
		if d.Identity != nil {
			stmt.write(g.dialect.IdentitySQL(g.ident(d.Identity.Column)))
		}
		return stmt, nil
	})
}

// BulkInsert returns one multi-row INSERT for a non-empty slice of entities
// sharing a record type. Parameter names carry the row index (@Name0,
// @Name1, ...). All rows share one auto-timestamp. No identity read-back is
// appended.
func (g *Generator) BulkInsert(entities any) (*Statement, error) {
	rows, d, err := rowsOf(entities)
	c := &call{op: OpBulkInsert, desc: d, rows: len(rows)}
	return g.observe(c, func() (*Statement, error) {
		if err != nil {
			return nil, err
		}
		props, err := insertColumns(d)
		if err != nil {
			return nil, err
		}
		if err := checkBulkNames(d, props); err != nil {
			return nil, err
		}

		stmt := NewStatement()
		ts := g.timestamp(d)
		values := make([]string, len(rows))
		for i, row := range rows {
			suffix := strconv.Itoa(i)
			if err := bindRow(stmt, d, row, props, suffix, ts); err != nil {
				return nil, WrapError(err, fmt.Sprintf("row %d", i))
			}
			values[i] = valueList(props, suffix)
		}
		if ts != nil {
			stmt.stamp(*ts)
		}

		stmt.write("INSERT INTO ", g.tableRef(d.Table, d.Schema),
			" (", g.columnList(props), ") VALUES ", strings.Join(values, ", "))
		return stmt, nil
	})
}
