package core

import (
	"fmt"
	"strings"

	"github.com/coregx/sqlgen/internal/schema"
)

// selectShape is the cached part of a SELECT: projection, FROM and joins.
type selectShape struct {
	op       string
	includes []string
}

func (s selectShape) key(d *schema.Descriptor) string {
	return fmt.Sprintf("%p|%s|%s", d, s.op, strings.Join(s.includes, ","))
}

// template returns the cached text under key, building it on a miss. Only
// descriptors published by schema.Describe are cached: they live as long as
// the process, so their address identifies them. Definition and Describer
// descriptors are rebuilt on every call.
func (g *Generator) template(d *schema.Descriptor, key string, build func() (string, error)) (string, error) {
	if !schema.Cached(d) {
		return build()
	}
	return g.templates.GetOrBuild(key, build)
}

// Select returns a SELECT of every selectable column, joined with the
// navigation fields named in includes. Soft-deleted rows are filtered out.
//
//	SELECT Cars.CarName AS Name, Cars.Id FROM Cars LEFT JOIN Users AS o ON Cars.OwnerId = o.Id WHERE Cars.State != @SoftDeleteValue
//
// Includes naming fields without join metadata are skipped. A join kind the
// dialect lacks fails with ErrUnsupportedJoin.
func (g *Generator) Select(model any, includes ...string) (*Statement, error) {
	return g.selectStatement(OpSelect, model, nil, includes)
}

// SelectFirst is Select limited to one row, using TOP 1 or LIMIT 1 as the
// dialect requires.
func (g *Generator) SelectFirst(model any, includes ...string) (*Statement, error) {
	return g.selectStatement(OpSelectFirst, model, nil, includes)
}

// SelectByKey is Select filtered by the key columns. keys holds one value
// per key column, in key order.
//
//	SELECT Products.Id, Products.Name, Products.Price FROM Products WHERE Products.Id = @Id
func (g *Generator) SelectByKey(model any, keys []any, includes ...string) (*Statement, error) {
	if keys == nil {
		keys = []any{}
	}
	return g.selectStatement(OpSelectByKey, model, keys, includes)
}

func (g *Generator) selectStatement(op string, model any, keyValues []any, includes []string) (*Statement, error) {
	d, err := describeType(model)
	c := &call{op: op, desc: d}
	return g.observe(c, func() (*Statement, error) {
		if err != nil {
			return nil, err
		}

		base, err := g.template(d, selectShape{op: op, includes: includes}.key(d), func() (string, error) {
			return g.buildSelect(d, op == OpSelectFirst, includes)
		})
		if err != nil {
			return nil, err
		}

		stmt := NewStatement()
		stmt.write(base)

		var filters []string
		if keyValues != nil {
			if len(d.Keys) == 0 {
				return nil, fmt.Errorf("%w: %s", ErrNoKey, d.Name)
			}
			if len(keyValues) != len(d.Keys) {
				return nil, fmt.Errorf("%w: %s has %d key columns, got %d values", ErrKeyMismatch, d.Name, len(d.Keys), len(keyValues))
			}
			for i, k := range d.Keys {
				if err := stmt.Bind(k.Name, keyValues[i]); err != nil {
					return nil, err
				}
				filters = append(filters, g.column(d.Table, k.Column)+" = @"+k.Name)
			}
		}
		if d.SoftDelete != nil {
			if err := stmt.Bind(SoftDeleteParam, d.SoftDelete.Value); err != nil {
				return nil, err
			}
			filters = append(filters, g.softDeleteFilter(d))
		}
		if len(filters) > 0 {
			stmt.write(" WHERE ", strings.Join(filters, " AND "))
		}

		if op == OpSelectFirst {
			if limit := g.dialect.LimitClause(1); limit != "" {
				stmt.write(" ", limit)
			}
		}
		return stmt, nil
	})
}

// buildSelect renders "SELECT <columns> FROM <table> <joins>".
func (g *Generator) buildSelect(d *schema.Descriptor, first bool, includes []string) (string, error) {
	joins, err := schema.ResolveJoins(d, includes...)
	if err != nil {
		return "", err
	}
	for _, j := range joins {
		if j.Kind == schema.RightJoin && !g.dialect.SupportsRightJoin() {
			return "", fmt.Errorf("%w: %s does not support RIGHT JOIN (field %s)", ErrUnsupportedJoin, g.dialect.Provider(), j.Field)
		}
	}

	var columns []string
	for _, p := range d.Properties {
		if p.IgnoreSelect {
			continue
		}
		columns = append(columns, g.projection(d.Table, p))
	}
	for _, jp := range schema.Columns(joins) {
		columns = append(columns, g.projection(jp.Join.Alias, jp.Property))
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("%w: %s has no selectable columns", ErrMetadata, d.Name)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if first {
		if top := g.dialect.TopClause(1); top != "" {
			sb.WriteString(top)
			sb.WriteString(" ")
		}
	}
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(g.tableRef(d.Table, d.Schema))

	for _, j := range joins {
		sb.WriteString(" ")
		sb.WriteString(j.Kind.Keyword())
		sb.WriteString(" ")
		sb.WriteString(g.tableRef(j.Table, j.Schema))
		sb.WriteString(" AS ")
		sb.WriteString(g.ident(j.Alias))
		if j.Kind != schema.CrossJoin {
			sb.WriteString(" ON ")
			sb.WriteString(g.column(d.Table, j.Key))
			sb.WriteString(" = ")
			sb.WriteString(g.column(j.Alias, j.ExternalKey))
		}
	}

	return sb.String(), nil
}

// projection renders one SELECT list entry, aliased back to the field name
// when the column was renamed.
func (g *Generator) projection(qualifier string, p *schema.Property) string {
	col := g.column(qualifier, p.Column)
	if p.Aliased {
		return col + " AS " + g.ident(p.Name)
	}
	return col
}

func (g *Generator) softDeleteFilter(d *schema.Descriptor) string {
	return g.column(d.Table, d.SoftDelete.Property.Column) + " != @" + SoftDeleteParam
}

// Count returns a COUNT(*) over the table, excluding soft-deleted rows.
//
//	SELECT COUNT(*) FROM Cars WHERE Cars.State != @SoftDeleteValue
func (g *Generator) Count(model any) (*Statement, error) {
	d, err := describeType(model)
	c := &call{op: OpCount, desc: d}
	return g.observe(c, func() (*Statement, error) {
		if err != nil {
			return nil, err
		}
		base, err := g.template(d, fmt.Sprintf("%p|%s", d, OpCount), func() (string, error) {
			return "SELECT COUNT(*) FROM " + g.tableRef(d.Table, d.Schema), nil
		})
		if err != nil {
			return nil, err
		}

		stmt := NewStatement()
		stmt.write(base)
		if d.SoftDelete != nil {
			if err := stmt.Bind(SoftDeleteParam, d.SoftDelete.Value); err != nil {
				return nil, err
			}
			stmt.write(" WHERE ", g.softDeleteFilter(d))
		}
		return stmt, nil
	})
}
