package schema

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/go-openapi/inflect"
	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// Definition declares an entity in YAML instead of struct tags. Rows of a
// defined entity are Row values.
//
//	name: OrderItem
//	naming: snake
//	pluralize: true
//	columns:
//	  - field: ID
//	    key: true
//	    identity: true
//	  - field: Quantity
type Definition struct {
	Name      string             `yaml:"name"`
	Table     string             `yaml:"table"`
	Schema    string             `yaml:"schema"`
	Naming    string             `yaml:"naming"`
	Pluralize bool               `yaml:"pluralize"`
	Columns   []ColumnDefinition `yaml:"columns"`
	Joins     []JoinDefinition   `yaml:"joins"`
}

// ColumnDefinition declares one column of a Definition.
type ColumnDefinition struct {
	Field        string                `yaml:"field"`
	Column       string                `yaml:"column"`
	Key          bool                  `yaml:"key"`
	Identity     bool                  `yaml:"identity"`
	IgnoreInsert bool                  `yaml:"ignore_insert"`
	IgnoreUpdate bool                  `yaml:"ignore_update"`
	IgnoreSelect bool                  `yaml:"ignore_select"`
	Order        *int                  `yaml:"order"`
	UpdatedAt    *UpdatedAtDefinition  `yaml:"updated_at"`
	SoftDelete   *SoftDeleteDefinition `yaml:"soft_delete"`
}

// UpdatedAtDefinition marks a column as auto-timestamped.
type UpdatedAtDefinition struct {
	Source string `yaml:"source"`
	Offset int    `yaml:"offset"`
}

// SoftDeleteDefinition marks a column as the soft-delete status column.
type SoftDeleteDefinition struct {
	Deleted any `yaml:"deleted"`
}

// JoinDefinition declares a navigation join of a Definition.
type JoinDefinition struct {
	Field   string   `yaml:"field"`
	Kind    string   `yaml:"kind"`
	Table   string   `yaml:"table"`
	Schema  string   `yaml:"schema"`
	Alias   string   `yaml:"alias"`
	Key     string   `yaml:"key"`
	Ref     string   `yaml:"ref"`
	Columns []string `yaml:"columns"`
}

// LoadDefinition decodes a YAML definition and builds its descriptor.
func LoadDefinition(r io.Reader) (*Descriptor, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("%w: decode definition: %v", ErrMetadata, err)
	}
	return def.Build()
}

// Build validates the definition and returns its descriptor.
func (def *Definition) Build() (*Descriptor, error) {
	if strings.TrimSpace(def.Name) == "" {
		return nil, fmt.Errorf("%w: definition without name", ErrMetadata)
	}
	naming, err := namingFunc(def.Naming)
	if err != nil {
		return nil, err
	}

	table := def.Table
	if table == "" {
		table = def.Name
		if def.Pluralize {
			table = inflect.Pluralize(table)
		}
		table = naming(table)
	}

	columns := make([]ColumnDefinition, len(def.Columns))
	copy(columns, def.Columns)
	sort.SliceStable(columns, func(i, j int) bool {
		return definitionOrder(columns[i]) < definitionOrder(columns[j])
	})

	specs := make([]columnSpec, 0, len(columns))
	for _, c := range columns {
		if strings.TrimSpace(c.Field) == "" {
			return nil, fmt.Errorf("%w: %s: column without field", ErrMetadata, def.Name)
		}
		ct := columnTag{
			Column:       c.Column,
			Key:          c.Key,
			Identity:     c.Identity,
			IgnoreInsert: c.IgnoreInsert,
			IgnoreUpdate: c.IgnoreUpdate,
			IgnoreSelect: c.IgnoreSelect,
		}
		if ct.Column == "" {
			ct.Column = naming(c.Field)
		}
		if c.UpdatedAt != nil {
			source, err := ParseTimeSource(c.UpdatedAt.Source)
			if err != nil {
				return nil, err
			}
			ct.UpdatedAt, ct.Source, ct.OffsetHours = true, source, c.UpdatedAt.Offset
		}
		if c.SoftDelete != nil {
			ct.Status = true
			ct.Deleted, ct.HasDeleted = c.SoftDelete.Deleted, c.SoftDelete.Deleted != nil
		}
		specs = append(specs, columnSpec{name: c.Field, tag: ct})
	}

	d := &Descriptor{
		Name:       def.Name,
		Table:      table,
		Schema:     def.Schema,
		navigation: make(map[string]*Join, len(def.Joins)),
	}
	if err := assemble(d, specs); err != nil {
		return nil, err
	}

	for _, jd := range def.Joins {
		j, err := jd.build(naming)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Name, err)
		}
		if _, dup := d.navigation[j.Field]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate join field %s", ErrMetadata, def.Name, j.Field)
		}
		if _, clash := d.byName[j.Field]; clash {
			return nil, fmt.Errorf("%w: %s: join field %s is also a column", ErrMetadata, def.Name, j.Field)
		}
		d.navigation[j.Field] = j
		d.joinOrder = append(d.joinOrder, j.Field)
	}

	return d, nil
}

func (jd JoinDefinition) build(naming func(string) string) (*Join, error) {
	if strings.TrimSpace(jd.Field) == "" {
		return nil, fmt.Errorf("%w: join without field", ErrMetadata)
	}
	kind, err := ParseJoinKind(jd.Kind)
	if err != nil {
		return nil, err
	}

	j := &Join{
		Field:       jd.Field,
		Kind:        kind,
		Table:       jd.Table,
		Schema:      jd.Schema,
		Alias:       jd.Alias,
		Key:         jd.Key,
		ExternalKey: jd.Ref,
	}
	if j.Table == "" {
		j.Table = naming(jd.Field)
	}
	j.Table, j.Schema = splitQualified(j.Table, j.Schema)
	if j.Alias == "" {
		j.Alias = jd.Field
	}

	for _, col := range jd.Columns {
		if err := identifiers.ValidateIdentifier("column", col); err != nil {
			return nil, wrapMetadata(fmt.Errorf("join field %s: %v", jd.Field, err))
		}
		j.Properties = append(j.Properties, &Property{Name: col, Column: col})
	}

	return j, validateJoin(j)
}

func definitionOrder(c ColumnDefinition) int {
	if c.Order == nil {
		return math.MaxInt
	}
	return *c.Order
}

// namingFunc maps a definition naming strategy to a column name transform.
func namingFunc(naming string) (func(string) string, error) {
	switch strings.ToLower(strings.TrimSpace(naming)) {
	case "", "none":
		return func(s string) string { return s }, nil
	case "snake":
		return strcase.ToSnake, nil
	case "screaming_snake":
		return strcase.ToScreamingSnake, nil
	case "camel":
		return strcase.ToCamel, nil
	case "lower_camel":
		return strcase.ToLowerCamel, nil
	default:
		return nil, fmt.Errorf("%w: unknown naming strategy %q", ErrMetadata, naming)
	}
}

// LoadRows decodes a YAML sequence of field-name maps into rows of d.
func LoadRows(r io.Reader, d *Descriptor) ([]*Row, error) {
	var raw []map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode rows: %w", err)
	}

	rows := make([]*Row, 0, len(raw))
	for i, values := range raw {
		for name := range values {
			if _, ok := d.byName[name]; !ok {
				if _, nav := d.navigation[name]; !nav {
					return nil, fmt.Errorf("%w: row %d: %s has no field %q", ErrUnknownField, i, d.Name, name)
				}
			}
		}
		rows = append(rows, &Row{Descriptor: d, Values: values})
	}
	return rows, nil
}
