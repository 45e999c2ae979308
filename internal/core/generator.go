// Package core generates parameterized SQL statements from record mapping
// metadata for SQL Server, MySQL, SQLite and PostgreSQL.
package core

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/coregx/sqlgen/internal/cache"
	"github.com/coregx/sqlgen/internal/dialects"
	"github.com/coregx/sqlgen/internal/logger"
	"github.com/coregx/sqlgen/internal/schema"
	"github.com/coregx/sqlgen/internal/tracer"
)

// Operation names reported to hooks, spans and logs.
const (
	OpInsert      = "insert"
	OpBulkInsert  = "bulk_insert"
	OpUpdate      = "update"
	OpBulkUpdate  = "bulk_update"
	OpDelete      = "delete"
	OpSelect      = "select"
	OpSelectByKey = "select_by_key"
	OpSelectFirst = "select_first"
	OpCount       = "count"
)

// SoftDeleteParam names the parameter bound to the soft-delete status value.
const SoftDeleteParam = "SoftDeleteValue"

// Generator builds statements for one dialect. It is safe for concurrent use;
// every call returns a fresh Statement.
type Generator struct {
	dialect   dialects.Dialect
	quote     bool
	logger    logger.Logger
	sanitizer *logger.Sanitizer
	tracer    tracer.Tracer
	hook      GenerateHook
	clock     func() time.Time
	templates *cache.TemplateCache
	ctx       context.Context
}

// Option configures a Generator.
type Option func(*Generator)

// WithQuote enables dialect quoting of every emitted identifier.
func WithQuote(quote bool) Option {
	return func(g *Generator) {
		g.quote = quote
	}
}

// WithLogger sets the logger receiving one debug line per statement.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithTracer sets the tracer opening one span per generation call.
func WithTracer(t tracer.Tracer) Option {
	return func(g *Generator) {
		if t != nil {
			g.tracer = t
		}
	}
}

// WithClock replaces time.Now as the source of auto-timestamps.
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithHook sets a hook called after every generation call.
func WithHook(hook GenerateHook) Option {
	return func(g *Generator) {
		g.hook = hook
	}
}

// WithSensitiveParams replaces the parameter names masked in log output.
func WithSensitiveParams(names ...string) Option {
	return func(g *Generator) {
		g.sanitizer = logger.NewSanitizer(names)
	}
}

// WithTemplateCacheCapacity sets the capacity of the SELECT template cache.
func WithTemplateCacheCapacity(capacity int) Option {
	return func(g *Generator) {
		g.templates = cache.NewWithCapacity(capacity)
	}
}

// New returns a generator for the named dialect (mssql, sqlserver, mysql,
// sqlite, sqlite3, postgres, postgresql, pgx). Unknown names fail with
// ErrUnsupportedDialect.
func New(dialect string, opts ...Option) (*Generator, error) {
	d, err := dialects.GetDialect(dialect)
	if err != nil {
		return nil, err
	}
	return newGenerator(d, opts), nil
}

// NewForProvider returns a generator for provider p.
func NewForProvider(p dialects.Provider, opts ...Option) (*Generator, error) {
	d, err := dialects.ForProvider(p)
	if err != nil {
		return nil, err
	}
	return newGenerator(d, opts), nil
}

func newGenerator(d dialects.Dialect, opts []Option) *Generator {
	g := &Generator{
		dialect:   d,
		logger:    &logger.NoopLogger{},
		sanitizer: logger.NewSanitizer(nil),
		tracer:    &tracer.NoopTracer{},
		clock:     time.Now,
		templates: cache.New(),
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WithContext returns a copy of g whose spans and hooks use ctx. The copy
// shares the template cache.
func (g *Generator) WithContext(ctx context.Context) *Generator {
	ng := *g
	ng.ctx = ctx
	return &ng
}

// Dialect returns the generator's dialect.
func (g *Generator) Dialect() dialects.Dialect {
	return g.dialect
}

// Quoted reports whether identifiers are quoted.
func (g *Generator) Quoted() bool {
	return g.quote
}

// CacheStats returns template cache metrics.
func (g *Generator) CacheStats() cache.Stats {
	return g.templates.Stats()
}

// call is the shared wrapper around every generation operation.
type call struct {
	op   string
	desc *schema.Descriptor
	rows int
}

// observe runs build inside a span, then logs and reports the result. A
// failed build never returns a statement.
func (g *Generator) observe(c *call, build func() (*Statement, error)) (*Statement, error) {
	start := time.Now()
	ctx, span := g.tracer.StartSpan(g.ctx, tracer.SpanPrefix+c.op)
	defer span.End()

	stmt, err := build()

	table := ""
	if c.desc != nil {
		table = c.desc.Table
	}
	meta := &tracer.StatementMetadata{
		System:    g.dialect.Provider().String(),
		Operation: c.op,
		Table:     table,
		Rows:      c.rows,
		Error:     err,
	}
	event := GenerateEvent{
		Operation: c.op,
		Table:     table,
		Rows:      c.rows,
		Error:     err,
	}

	if err != nil {
		stmt = nil
		g.logger.Error("statement generation failed",
			"op", c.op,
			"table", table,
			"error", err)
	} else {
		meta.SQL, meta.Params = stmt.SQL(), stmt.Len()
		event.SQL, event.Params = stmt.SQL(), stmt.Params()
		g.logger.Debug("statement generated",
			"op", c.op,
			"table", table,
			"sql", stmt.SQL(),
			"params", g.sanitizer.FormatParams(stmt.names, stmt.params))
	}

	tracer.AddStatementAttributes(span, meta)
	event.Duration = time.Since(start)
	if g.hook != nil {
		g.hook(ctx, event)
	}

	return stmt, err
}

// ident quotes a single identifier when quoting is enabled.
func (g *Generator) ident(name string) string {
	if !g.quote {
		return name
	}
	return g.dialect.QuoteIdentifier(name)
}

// tableRef returns the schema-qualified table name.
func (g *Generator) tableRef(table, schemaName string) string {
	if schemaName == "" {
		return g.ident(table)
	}
	return g.ident(schemaName) + "." + g.ident(table)
}

// column returns "<table>.<column>" for use in SELECT lists and filters.
func (g *Generator) column(table, column string) string {
	return g.ident(table) + "." + g.ident(column)
}

// describe resolves the descriptor of a single entity.
func describe(entity any) (*schema.Descriptor, error) {
	if entity == nil {
		return nil, fmt.Errorf("%w: nil entity", ErrInvalidModelType)
	}
	return schema.DescriptorOf(entity)
}

// describeType resolves the descriptor of a record type given as a value,
// pointer, reflect.Type or descriptor. A type implementing Describer
// supplies its own descriptor.
func describeType(model any) (*schema.Descriptor, error) {
	switch m := model.(type) {
	case reflect.Type:
		return schema.DescribeType(m)
	case *schema.Descriptor:
		if m == nil {
			return nil, fmt.Errorf("%w: nil descriptor", ErrInvalidModelType)
		}
		return m, nil
	default:
		return describe(model)
	}
}

// rowsOf flattens a slice or array of entities. Struct elements are
// addressed so pointer-receiver FieldValuer implementations apply. All rows
// must share one descriptor.
func rowsOf(entities any) ([]any, *schema.Descriptor, error) {
	if entities == nil {
		return nil, nil, ErrEmptyInput
	}

	v := reflect.ValueOf(entities)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, nil, fmt.Errorf("%w: bulk input must be a slice, got %T", ErrInvalidModelType, entities)
	}
	if v.Len() == 0 {
		return nil, nil, ErrEmptyInput
	}

	rows := make([]any, v.Len())
	var desc *schema.Descriptor
	for i := range rows {
		elem := v.Index(i)
		if elem.Kind() == reflect.Struct && elem.CanAddr() {
			rows[i] = elem.Addr().Interface()
		} else {
			rows[i] = elem.Interface()
		}

		d, err := describe(rows[i])
		if err != nil {
			return nil, nil, WrapError(err, fmt.Sprintf("row %d", i))
		}
		if desc == nil {
			desc = d
		} else if d != desc {
			return nil, nil, fmt.Errorf("%w: row %d is %s, expected %s", ErrInvalidModelType, i, d.Name, desc.Name)
		}
	}
	return rows, desc, nil
}

// checkBulkNames rejects props whose suffixed parameter names can collide,
// such as Code and Code1: row 10 of Code and row 0 of Code1 both bind
// @Code10.
func checkBulkNames(d *schema.Descriptor, props ...[]*schema.Property) error {
	names := make(map[string]bool)
	for _, group := range props {
		for _, p := range group {
			names[p.Name] = true
		}
	}
	for name := range names {
		base := strings.TrimRight(name, "0123456789")
		if base != "" && base != name && names[base] {
			return fmt.Errorf("%w: %s: fields %s and %s produce colliding bulk parameter names", ErrMetadata, d.Name, base, name)
		}
	}
	return nil
}

// bindRow binds the values of props read from entity, suffixing each name.
func bindRow(stmt *Statement, d *schema.Descriptor, entity any, props []*schema.Property, suffix string, ts *time.Time) error {
	for _, p := range props {
		var value any
		if ts != nil && d.UpdatedAt != nil && p == d.UpdatedAt.Property {
			value = *ts
		} else {
			v, err := d.Value(entity, p)
			if err != nil {
				return err
			}
			value = v
		}
		if err := stmt.Bind(p.Name+suffix, value); err != nil {
			return err
		}
	}
	return nil
}

// assignments renders "<col> = @<Field><suffix>" pairs joined by sep.
func (g *Generator) assignments(props []*schema.Property, suffix, sep string) string {
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = g.ident(p.Column) + " = @" + p.Name + suffix
	}
	return strings.Join(parts, sep)
}

// timestamp computes the auto-timestamp of d, or nil when d has none.
func (g *Generator) timestamp(d *schema.Descriptor) *time.Time {
	if d.UpdatedAt == nil {
		return nil
	}
	ts := d.UpdatedAt.Now(g.clock)
	return &ts
}

// ApplyTimestamp writes the auto-timestamp computed for stmt into each
// entity, which must be pointers (or FieldSetter rows). Statements without a
// timestamp leave the entities untouched.
func (g *Generator) ApplyTimestamp(stmt *Statement, entities ...any) error {
	ts, ok := stmt.Timestamp()
	if !ok {
		return nil
	}
	for _, entity := range entities {
		d, err := describe(entity)
		if err != nil {
			return err
		}
		if err := d.Stamp(entity, ts); err != nil {
			return err
		}
	}
	return nil
}
