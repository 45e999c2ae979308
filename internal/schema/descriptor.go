// Package schema extracts, validates and caches the mapping metadata of
// record types: table, ordered columns, keys, identity, auto-timestamp,
// soft-delete and join navigation.
package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coregx/sqlgen/internal/security"
)

// Tabler is implemented by record types that name their table.
type Tabler interface {
	TableName() string
}

// SchemaTabler is implemented by record types that name their table schema.
type SchemaTabler interface {
	TableSchema() string
}

// Describer is implemented by records that register their descriptor
// statically instead of having it reflected from struct tags.
type Describer interface {
	Describe() (*Descriptor, error)
}

var (
	descriptorCache sync.Map // map[reflect.Type]*Descriptor
	identifiers     = security.NewValidator()
)

// Property is one mapped column.
type Property struct {
	// Name is the field name; it doubles as the bound parameter name.
	Name string
	// Column is the resolved, unquoted column name.
	Column string
	// Aliased reports an explicit column override that differs from Name.
	Aliased bool
	Index   []int
	Type    reflect.Type

	Key          bool
	Identity     bool
	IgnoreInsert bool
	IgnoreUpdate bool
	IgnoreSelect bool
}

func newProperty(name string, t reflect.Type, index []int, ct columnTag) *Property {
	column := ct.Column
	if column == "" {
		column = name
	}
	return &Property{
		Name:         name,
		Column:       column,
		Aliased:      column != name,
		Index:        index,
		Type:         t,
		Key:          ct.Key,
		Identity:     ct.Identity,
		IgnoreInsert: ct.IgnoreInsert,
		IgnoreUpdate: ct.IgnoreUpdate,
		IgnoreSelect: ct.IgnoreSelect,
	}
}

// UpdatedAt describes an auto-populated modification timestamp column.
type UpdatedAt struct {
	Property    *Property
	Source      TimeSource
	OffsetHours int
}

// Now reads clock in the configured time source and shifts the result into
// the configured fixed hour offset. The instant is unchanged by the offset.
func (u *UpdatedAt) Now(clock func() time.Time) time.Time {
	now := clock()
	if u.Source == Local {
		now = now.Local()
	} else {
		now = now.UTC()
	}
	if u.OffsetHours != 0 {
		now = now.In(time.FixedZone(fmt.Sprintf("UTC%+d", u.OffsetHours), u.OffsetHours*3600))
	}
	return now
}

// SoftDelete describes the status column marking deleted rows.
type SoftDelete struct {
	Property *Property
	// Value is the status value of a deleted row.
	Value any
}

// Descriptor is the mapping metadata of one record type. It is immutable
// once built and shared by every generator.
type Descriptor struct {
	Name   string
	Type   reflect.Type
	Table  string
	Schema string

	// Properties are the mapped scalar columns in field order.
	Properties []*Property
	Identity   *Property
	Keys       []*Property
	UpdatedAt  *UpdatedAt
	SoftDelete *SoftDelete

	byName map[string]*Property
	// navigation maps navigation field names to their join; a nil join marks a
	// navigation field without join metadata.
	navigation map[string]*Join
	joinOrder  []string
}

// Property returns the mapped property for a field name.
func (d *Descriptor) Property(name string) (*Property, bool) {
	p, ok := d.byName[name]
	return p, ok
}

// Joins returns every declared join in field order.
func (d *Descriptor) Joins() []*Join {
	joins := make([]*Join, 0, len(d.joinOrder))
	for _, name := range d.joinOrder {
		if j := d.navigation[name]; j != nil {
			joins = append(joins, j)
		}
	}
	return joins
}

// UpdateKeys returns the key properties used in UPDATE/DELETE WHERE clauses:
// every key not marked noupdate.
func (d *Descriptor) UpdateKeys() ([]*Property, error) {
	keys := make([]*Property, 0, len(d.Keys))
	for _, k := range d.Keys {
		if !k.IgnoreUpdate {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoKey, d.Name)
	}
	return keys, nil
}

// Describe returns the descriptor of struct type t, building it on first use.
// Concurrent first calls may build twice; only one result is ever published.
func Describe(t reflect.Type) (*Descriptor, error) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModelType, t)
	}

	if cached, ok := descriptorCache.Load(t); ok {
		return cached.(*Descriptor), nil
	}

	d, err := build(t)
	if err != nil {
		return nil, err
	}

	actual, _ := descriptorCache.LoadOrStore(t, d)
	return actual.(*Descriptor), nil
}

// DescribeType is Describe for a record type that may register its own
// descriptor: when *t implements Describer, the zero record's descriptor is
// returned instead of the reflected one.
func DescribeType(t reflect.Type) (*Descriptor, error) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t != nil && t.Kind() == reflect.Struct {
		if describer, ok := reflect.New(t).Interface().(Describer); ok {
			return describer.Describe()
		}
	}
	return Describe(t)
}

// Cached reports whether d is the descriptor Describe published for its
// type. Cached descriptors live for the life of the process.
func Cached(d *Descriptor) bool {
	if d == nil || d.Type == nil {
		return false
	}
	published, ok := descriptorCache.Load(d.Type)
	return ok && published.(*Descriptor) == d
}

// DescriptorOf returns the descriptor of an entity value: its own
// descriptor for a Describer, the reflected one otherwise.
func DescriptorOf(entity any) (*Descriptor, error) {
	if entity == nil {
		return nil, fmt.Errorf("%w: nil entity", ErrInvalidModelType)
	}
	if describer, ok := entity.(Describer); ok {
		return describer.Describe()
	}
	return Describe(reflect.TypeOf(entity))
}

// columnSpec is one scalar field before assembly.
type columnSpec struct {
	name  string
	typ   reflect.Type
	index []int
	tag   columnTag
}

// build reflects struct type t into a descriptor.
func build(t reflect.Type) (*Descriptor, error) {
	var (
		specs []columnSpec
		navs  = make(map[string]*Join)
		order []string
	)

	for _, f := range OrderedFields(t) {
		var ct columnTag
		if tag, ok := f.Tag.Lookup("db"); ok {
			parsed, err := parseDBTag(tag)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err)
			}
			ct = parsed
		}
		if ct.Skip {
			continue
		}

		if isScalar(f.Type) {
			if _, hasJoin := f.Tag.Lookup("join"); hasJoin {
				return nil, fmt.Errorf("%w: %s.%s: join tag on a scalar field", ErrMetadata, t.Name(), f.Name)
			}
			specs = append(specs, columnSpec{name: f.Name, typ: f.Type, index: f.Index, tag: ct})
			continue
		}

		order = append(order, f.Name)
		tag, ok := f.Tag.Lookup("join")
		if !ok {
			navs[f.Name] = nil
			continue
		}
		jt, err := parseJoinTag(tag)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err)
		}
		j, err := buildJoin(f.Name, f.Type, jt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name(), err)
		}
		navs[f.Name] = j
	}

	d := &Descriptor{
		Name:       t.Name(),
		Type:       t,
		Table:      tableNameOf(t),
		Schema:     tableSchemaOf(t),
		navigation: navs,
		joinOrder:  order,
	}
	if err := assemble(d, specs); err != nil {
		return nil, err
	}
	return d, nil
}

// assemble fills properties, keys and special columns of d from specs and
// validates the result.
//
//nolint:gocognit,gocyclo,cyclop,funlen // Sequential metadata checks.
func assemble(d *Descriptor, specs []columnSpec) error {
	d.Table, d.Schema = splitQualified(d.Table, d.Schema)
	if err := identifiers.ValidateIdentifier("table", d.Table); err != nil {
		return wrapMetadata(fmt.Errorf("%s: %v", d.Name, err))
	}
	if d.Schema != "" {
		if err := identifiers.ValidateIdentifier("schema", d.Schema); err != nil {
			return wrapMetadata(fmt.Errorf("%s: %v", d.Name, err))
		}
	}
	if len(specs) == 0 {
		return fmt.Errorf("%w: %s has no mapped columns", ErrMetadata, d.Name)
	}

	d.byName = make(map[string]*Property, len(specs))
	columns := make(map[string]string, len(specs))

	for _, spec := range specs {
		p := newProperty(spec.name, spec.typ, spec.index, spec.tag)
		if err := identifiers.ValidateIdentifier("column", p.Column); err != nil {
			return wrapMetadata(fmt.Errorf("%s.%s: %v", d.Name, p.Name, err))
		}
		if other, dup := columns[strings.ToLower(p.Column)]; dup {
			return fmt.Errorf("%w: %s: fields %s and %s both map to column %s", ErrMetadata, d.Name, other, p.Name, p.Column)
		}
		columns[strings.ToLower(p.Column)] = p.Name

		d.Properties = append(d.Properties, p)
		d.byName[p.Name] = p

		if p.Key {
			d.Keys = append(d.Keys, p)
		}
		if p.Identity {
			if d.Identity != nil {
				return fmt.Errorf("%w: %s declares identities %s and %s", ErrMetadata, d.Name, d.Identity.Name, p.Name)
			}
			d.Identity = p
		}

		if spec.tag.UpdatedAt {
			if d.UpdatedAt != nil {
				return fmt.Errorf("%w: %s declares more than one updatedat column", ErrMetadata, d.Name)
			}
			if p.Type != nil && p.Type != timeType && p.Type != reflect.PointerTo(timeType) {
				return fmt.Errorf("%w: %s.%s: updatedat needs time.Time, got %s", ErrMetadata, d.Name, p.Name, p.Type)
			}
			d.UpdatedAt = &UpdatedAt{Property: p, Source: spec.tag.Source, OffsetHours: spec.tag.OffsetHours}
		}

		if spec.tag.Status {
			if d.SoftDelete != nil {
				return fmt.Errorf("%w: %s declares more than one status column", ErrMetadata, d.Name)
			}
			if !spec.tag.HasDeleted {
				return fmt.Errorf("%w: %s.%s: status column needs a deleted value", ErrMetadata, d.Name, p.Name)
			}
			value, err := convertDeleted(spec.tag.Deleted, p.Type)
			if err != nil {
				return fmt.Errorf("%w: %s.%s: %v", ErrMetadata, d.Name, p.Name, err)
			}
			d.SoftDelete = &SoftDelete{Property: p, Value: value}
		}
	}

	if len(d.Keys) == 0 {
		for _, fallback := range []string{"ID", "Id"} {
			if p, ok := d.byName[fallback]; ok {
				p.Key = true
				d.Keys = []*Property{p}
				break
			}
		}
	}

	return nil
}

// convertDeleted converts a deleted sentinel into the status field's type.
// String sentinels come from struct tags; other values pass through when the
// field type is unknown.
func convertDeleted(raw any, t reflect.Type) (any, error) {
	if t == nil {
		return raw, nil
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	s, isString := raw.(string)
	if !isString {
		v := reflect.ValueOf(raw)
		if !v.IsValid() || !v.Type().ConvertibleTo(t) {
			return nil, fmt.Errorf("deleted value %v does not convert to %s", raw, t)
		}
		return v.Convert(t).Interface(), nil
	}

	var parsed any
	switch t.Kind() {
	case reflect.String:
		parsed = s
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, err
		}
		parsed = b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		parsed = n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		parsed = n
	default:
		return nil, fmt.Errorf("status column of type %s is not supported", t)
	}

	return reflect.ValueOf(parsed).Convert(t).Interface(), nil
}

// splitQualified splits "schema.table" when no schema is set explicitly.
func splitQualified(table, schema string) (string, string) {
	if schema != "" {
		return table, schema
	}
	if i := strings.LastIndex(table, "."); i > 0 {
		return strings.TrimSpace(table[i+1:]), strings.TrimSpace(table[:i])
	}
	return table, schema
}

// wrapMetadata marks err as a metadata error.
func wrapMetadata(err error) error {
	return fmt.Errorf("%w: %v", ErrMetadata, err)
}
