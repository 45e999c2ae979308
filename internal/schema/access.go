package schema

import (
	"fmt"
	"reflect"
	"time"
)

// FieldValuer is implemented by records that expose field values by name,
// bypassing reflection.
type FieldValuer interface {
	FieldValue(name string) (any, bool)
}

// FieldSetter is implemented by records that accept field values by name.
type FieldSetter interface {
	SetFieldValue(name string, value any)
}

// Value reads the value of p from entity. A FieldValuer missing the field
// yields nil, which binds as NULL.
func (d *Descriptor) Value(entity any, p *Property) (any, error) {
	if fv, ok := entity.(FieldValuer); ok {
		v, _ := fv.FieldValue(p.Name)
		return v, nil
	}

	v, err := d.structValue(entity)
	if err != nil {
		return nil, err
	}

	f, err := v.FieldByIndexErr(p.Index)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", d.Name, p.Name, err)
	}
	return f.Interface(), nil
}

// SetValue assigns value to p on entity. Struct entities must be passed by
// pointer.
func (d *Descriptor) SetValue(entity any, p *Property, value any) error {
	if fs, ok := entity.(FieldSetter); ok {
		fs.SetFieldValue(p.Name, value)
		return nil
	}

	rv := reflect.ValueOf(entity)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: %s must be passed by non-nil pointer to be updated", ErrInvalidModelType, d.Name)
	}

	v, err := d.structValue(entity)
	if err != nil {
		return err
	}
	f, err := v.FieldByIndexErr(p.Index)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", d.Name, p.Name, err)
	}
	if !f.CanSet() {
		return fmt.Errorf("%w: %s.%s is not settable", ErrMetadata, d.Name, p.Name)
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		f.Set(reflect.Zero(f.Type()))
		return nil
	}
	switch {
	case val.Type().AssignableTo(f.Type()):
		f.Set(val)
	case f.Kind() == reflect.Ptr && val.Type().AssignableTo(f.Type().Elem()):
		ptr := reflect.New(f.Type().Elem())
		ptr.Elem().Set(val)
		f.Set(ptr)
	default:
		return fmt.Errorf("%w: cannot assign %s to %s.%s", ErrMetadata, val.Type(), d.Name, p.Name)
	}
	return nil
}

// Stamp writes ts into the updated-at column of entity.
func (d *Descriptor) Stamp(entity any, ts time.Time) error {
	if d.UpdatedAt == nil {
		return nil
	}
	return d.SetValue(entity, d.UpdatedAt.Property, ts)
}

// structValue dereferences entity to its struct value and checks its type.
func (d *Descriptor) structValue(entity any) (reflect.Value, error) {
	v := reflect.ValueOf(entity)
	if !v.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: nil %s", ErrInvalidModelType, d.Name)
	}
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil %s", ErrInvalidModelType, d.Name)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct || (d.Type != nil && v.Type() != d.Type) {
		return reflect.Value{}, fmt.Errorf("%w: expected %s, got %s", ErrInvalidModelType, d.Name, v.Type())
	}
	return v, nil
}

// Row is a record held as a field-name map, described by a Descriptor built
// from a Definition.
type Row struct {
	Descriptor *Descriptor
	Values     map[string]any
}

// Describe returns the row's descriptor.
func (r *Row) Describe() (*Descriptor, error) {
	if r.Descriptor == nil {
		return nil, fmt.Errorf("%w: row without descriptor", ErrMetadata)
	}
	return r.Descriptor, nil
}

// FieldValue returns the value stored under name.
func (r *Row) FieldValue(name string) (any, bool) {
	v, ok := r.Values[name]
	return v, ok
}

// SetFieldValue stores value under name.
func (r *Row) SetFieldValue(name string, value any) {
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	r.Values[name] = value
}
