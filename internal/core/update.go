package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/coregx/sqlgen/internal/schema"
)

// setColumns returns the UPDATE SET list: every property except keys,
// the identity and noupdate columns.
func setColumns(d *schema.Descriptor) ([]*schema.Property, error) {
	props := make([]*schema.Property, 0, len(d.Properties))
	for _, p := range d.Properties {
		if p.Key || p.Identity || p.IgnoreUpdate {
			continue
		}
		props = append(props, p)
	}
	if len(props) == 0 {
		return nil, fmt.Errorf("%w: %s has no updatable columns", ErrMetadata, d.Name)
	}
	return props, nil
}

// updateRow writes one "UPDATE ... SET ... WHERE ..." and binds its values.
func (g *Generator) updateRow(stmt *Statement, d *schema.Descriptor, entity any, set, keys []*schema.Property, suffix string, ts *time.Time) error {
	if err := bindRow(stmt, d, entity, set, suffix, ts); err != nil {
		return err
	}
	if err := bindRow(stmt, d, entity, keys, suffix, nil); err != nil {
		return err
	}
	stmt.write("UPDATE ", g.tableRef(d.Table, d.Schema),
		" SET ", g.assignments(set, suffix, ", "),
		" WHERE ", g.assignments(keys, suffix, " AND "))
	return nil
}

// Update returns an UPDATE of entity by its keys.
//
//	UPDATE Products SET Name = @Name, Price = @Price WHERE Id = @Id
func (g *Generator) Update(entity any) (*Statement, error) {
	d, err := describe(entity)
	c := &call{op: OpUpdate, desc: d, rows: 1}
	return g.observe(c, func() (*Statement, error) {
		if err != nil {
			return nil, err
		}
		set, keys, err := updateShape(d)
		if err != nil {
			return nil, err
		}

		stmt := NewStatement()
		ts := g.timestamp(d)
		if err := g.updateRow(stmt, d, entity, set, keys, "", ts); err != nil {
			return nil, err
		}
		if ts != nil {
			stmt.stamp(*ts)
		}
		return stmt, nil
	})
}

// BulkUpdate returns one UPDATE per entity joined by "; ", each row's
// parameters suffixed with its index. All rows share one auto-timestamp.
//
//	UPDATE Products SET Name = @Name0, Price = @Price0 WHERE Id = @Id0; UPDATE Products SET Name = @Name1, Price = @Price1 WHERE Id = @Id1
func (g *Generator) BulkUpdate(entities any) (*Statement, error) {
	rows, d, err := rowsOf(entities)
	c := &call{op: OpBulkUpdate, desc: d, rows: len(rows)}
	return g.observe(c, func() (*Statement, error) {
		if err != nil {
			return nil, err
		}
		set, keys, err := updateShape(d)
		if err != nil {
			return nil, err
		}
		if err := checkBulkNames(d, set, keys); err != nil {
			return nil, err
		}

		stmt := NewStatement()
		ts := g.timestamp(d)
		for i, row := range rows {
			if i > 0 {
				stmt.write("; ")
			}
			if err := g.updateRow(stmt, d, row, set, keys, strconv.Itoa(i), ts); err != nil {
				return nil, WrapError(err, fmt.Sprintf("row %d", i))
			}
		}
		if ts != nil {
			stmt.stamp(*ts)
		}
		return stmt, nil
	})
}

func updateShape(d *schema.Descriptor) (set, keys []*schema.Property, err error) {
	if keys, err = d.UpdateKeys(); err != nil {
		return nil, nil, err
	}
	if set, err = setColumns(d); err != nil {
		return nil, nil, err
	}
	return set, keys, nil
}

// Delete returns a DELETE of entity by its keys. Entities with a soft-delete
// status column are instead updated to the deleted status, stamping the
// updated-at column when present.
//
//	DELETE FROM Products WHERE Id = @Id
//	UPDATE Cars SET State = @SoftDeleteValue, Modified = @Modified WHERE Id = @Id
func (g *Generator) Delete(entity any) (*Statement, error) {
	d, err := describe(entity)
	c := &call{op: OpDelete, desc: d, rows: 1}
	return g.observe(c, func() (*Statement, error) {
		if err != nil {
			return nil, err
		}
		keys, err := d.UpdateKeys()
		if err != nil {
			return nil, err
		}

		stmt := NewStatement()
		if d.SoftDelete == nil {
			if err := bindRow(stmt, d, entity, keys, "", nil); err != nil {
				return nil, err
			}
			stmt.write("DELETE FROM ", g.tableRef(d.Table, d.Schema),
				" WHERE ", g.assignments(keys, "", " AND "))
			return stmt, nil
		}

		if err := stmt.Bind(SoftDeleteParam, d.SoftDelete.Value); err != nil {
			return nil, err
		}
		set := []string{g.ident(d.SoftDelete.Property.Column) + " = @" + SoftDeleteParam}
		if ts := g.timestamp(d); ts != nil {
			p := d.UpdatedAt.Property
			if err := stmt.Bind(p.Name, *ts); err != nil {
				return nil, err
			}
			set = append(set, g.ident(p.Column)+" = @"+p.Name)
			stmt.stamp(*ts)
		}
		if err := bindRow(stmt, d, entity, keys, "", nil); err != nil {
			return nil, err
		}
		stmt.write("UPDATE ", g.tableRef(d.Table, d.Schema),
			" SET ", strings.Join(set, ", "),
			" WHERE ", g.assignments(keys, "", " AND "))
		return stmt, nil
	})
}
