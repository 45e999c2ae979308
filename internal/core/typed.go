package core

import "reflect"

// Typed is a Generator bound to record type T.
type Typed[T any] struct {
	g *Generator
}

// For binds g to record type T.
//
//	products := sqlgen.For[Product](g)
//	stmt, err := products.Insert(&p)
func For[T any](g *Generator) *Typed[T] {
	return &Typed[T]{g: g}
}

// Generator returns the underlying generator.
func (t *Typed[T]) Generator() *Generator {
	return t.g
}

// Insert is Generator.Insert for one T.
func (t *Typed[T]) Insert(entity *T) (*Statement, error) {
	return t.g.Insert(entity)
}

// BulkInsert is Generator.BulkInsert for a slice of T.
func (t *Typed[T]) BulkInsert(entities []T) (*Statement, error) {
	return t.g.BulkInsert(entities)
}

// Update is Generator.Update for one T.
func (t *Typed[T]) Update(entity *T) (*Statement, error) {
	return t.g.Update(entity)
}

// BulkUpdate is Generator.BulkUpdate for a slice of T.
func (t *Typed[T]) BulkUpdate(entities []T) (*Statement, error) {
	return t.g.BulkUpdate(entities)
}

// Delete is Generator.Delete for one T.
func (t *Typed[T]) Delete(entity *T) (*Statement, error) {
	return t.g.Delete(entity)
}

// Select is Generator.Select over T.
func (t *Typed[T]) Select(includes ...string) (*Statement, error) {
	return t.g.Select(reflect.TypeFor[T](), includes...)
}

// SelectFirst is Generator.SelectFirst over T.
func (t *Typed[T]) SelectFirst(includes ...string) (*Statement, error) {
	return t.g.SelectFirst(reflect.TypeFor[T](), includes...)
}

// SelectByKey is Generator.SelectByKey over T.
func (t *Typed[T]) SelectByKey(keys []any, includes ...string) (*Statement, error) {
	return t.g.SelectByKey(reflect.TypeFor[T](), keys, includes...)
}

// Count is Generator.Count over T.
func (t *Typed[T]) Count() (*Statement, error) {
	return t.g.Count(reflect.TypeFor[T]())
}

// ApplyTimestamp writes the statement's auto-timestamp into each entity.
func (t *Typed[T]) ApplyTimestamp(stmt *Statement, entities ...*T) error {
	for _, e := range entities {
		if err := t.g.ApplyTimestamp(stmt, e); err != nil {
			return err
		}
	}
	return nil
}

// ApplyTimestampAll writes the statement's auto-timestamp into every element
// of entities, as returned by BulkInsert or BulkUpdate.
func (t *Typed[T]) ApplyTimestampAll(stmt *Statement, entities []T) error {
	for i := range entities {
		if err := t.g.ApplyTimestamp(stmt, &entities[i]); err != nil {
			return err
		}
	}
	return nil
}
