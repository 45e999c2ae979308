package schema

import (
	"database/sql/driver"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	fieldCache sync.Map // map[reflect.Type][]reflect.StructField

	timeType   = reflect.TypeOf(time.Time{})
	valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
)

// OrderedFields returns the exported fields of struct type t, embedded
// structs flattened, sorted by their db tag order option. Fields without an
// order sort after all ordered fields and keep declaration order among
// themselves. Each returned field's Index is the full path from t.
//
// The result is computed once per type and shared; callers must not modify it.
func OrderedFields(t reflect.Type) []reflect.StructField {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]reflect.StructField)
	}

	fields := visibleFields(t)

	sort.SliceStable(fields, func(i, j int) bool {
		return fieldOrder(fields[i]) < fieldOrder(fields[j])
	})

	actual, _ := fieldCache.LoadOrStore(t, fields)
	return actual.([]reflect.StructField)
}

// visibleFields returns the flattened exported fields of t that a selector
// would reach: a field hides same-named fields nested deeper, and two
// same-named fields at the shallowest depth hide each other.
func visibleFields(t reflect.Type) []reflect.StructField {
	var all []reflect.StructField
	collectFields(t, nil, &all)

	depth := make(map[string]int, len(all))
	count := make(map[string]int, len(all))
	for _, f := range all {
		d, seen := depth[f.Name]
		switch {
		case !seen || len(f.Index) < d:
			depth[f.Name], count[f.Name] = len(f.Index), 1
		case len(f.Index) == d:
			count[f.Name]++
		}
	}

	fields := make([]reflect.StructField, 0, len(all))
	for _, f := range all {
		if len(f.Index) == depth[f.Name] && count[f.Name] == 1 {
			fields = append(fields, f)
		}
	}
	return fields
}

// collectFields appends exported fields of t, descending into embedded
// non-pointer structs that carry no db tag of their own.
func collectFields(t reflect.Type, prefix []int, out *[]reflect.StructField) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		index := make([]int, len(prefix)+1)
		copy(index, prefix)
		index[len(prefix)] = i

		if f.Anonymous {
			if _, tagged := f.Tag.Lookup("db"); !tagged && f.Type.Kind() == reflect.Struct && !isScalar(f.Type) {
				collectFields(f.Type, index, out)
				continue
			}
			if f.Type.Kind() == reflect.Ptr {
				continue
			}
		}

		if !f.IsExported() {
			continue
		}

		f.Index = index
		*out = append(*out, f)
	}
}

// fieldOrder returns the declared order of a field, math.MaxInt when absent.
func fieldOrder(f reflect.StructField) int {
	tag, ok := f.Tag.Lookup("db")
	if !ok {
		return math.MaxInt
	}
	ct, err := parseDBTag(tag)
	if err != nil || !ct.HasOrder {
		return math.MaxInt
	}
	return ct.Order
}

// isScalar reports whether values of t map to a single column: basic kinds,
// []byte, time.Time, driver.Valuer implementations and pointers to those.
func isScalar(t reflect.Type) bool {
	if t.Implements(valuerType) || reflect.PointerTo(t).Implements(valuerType) {
		return true
	}
	if t == timeType {
		return true
	}

	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return true
	case reflect.Slice:
		return t.Elem().Kind() == reflect.Uint8
	case reflect.Ptr:
		return isScalar(t.Elem())
	default:
		return false
	}
}

// scalarProperties returns the mapped scalar columns of t, used for the
// owned side of a join. Nested structs and collections are not flattened.
func scalarProperties(t reflect.Type) ([]*Property, error) {
	var props []*Property

	for _, f := range OrderedFields(t) {
		if !isScalar(f.Type) {
			continue
		}

		ct := columnTag{}
		if tag, ok := f.Tag.Lookup("db"); ok {
			parsed, err := parseDBTag(tag)
			if err != nil {
				return nil, err
			}
			ct = parsed
		}
		if ct.Skip {
			continue
		}

		p := newProperty(f.Name, f.Type, f.Index, ct)
		if err := identifiers.ValidateIdentifier("column", p.Column); err != nil {
			return nil, wrapMetadata(err)
		}
		props = append(props, p)
	}

	return props, nil
}

// tableNameOf returns the TableName() of t or its type name.
func tableNameOf(t reflect.Type) string {
	if tabler, ok := reflect.New(t).Interface().(Tabler); ok {
		if name := strings.TrimSpace(tabler.TableName()); name != "" {
			return name
		}
	}
	return t.Name()
}

// tableSchemaOf returns the TableSchema() of t, if any.
func tableSchemaOf(t reflect.Type) string {
	if st, ok := reflect.New(t).Interface().(SchemaTabler); ok {
		return strings.TrimSpace(st.TableSchema())
	}
	return ""
}
