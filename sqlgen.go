// Package sqlgen generates parameterized SQL statements from struct mapping
// metadata for SQL Server, MySQL, SQLite and PostgreSQL. It never executes
// SQL: statements expose their text and named parameters for database/sql
// (Statement.Args) or pgx (Statement.PgxArgs).
//
//	type Product struct {
//	    Id    int `db:",key,identity"`
//	    Name  string
//	    Price float64
//	}
//
//	func (Product) TableName() string { return "Products" }
//
//	g, _ := sqlgen.New("mssql")
//	stmt, _ := g.Insert(&Product{Name: "Widget", Price: 9.5})
//	// INSERT INTO Products (Name, Price) VALUES (@Name, @Price) SELECT SCOPE_IDENTITY() AS Id
package sqlgen

import (
	"github.com/coregx/sqlgen/internal/core"
	"github.com/coregx/sqlgen/internal/dialects"
	"github.com/coregx/sqlgen/internal/logger"
	"github.com/coregx/sqlgen/internal/schema"
	"github.com/coregx/sqlgen/internal/tracer"
)

type (
	// Generator builds statements for one dialect.
	Generator = core.Generator
	// Option configures a Generator.
	Option = core.Option
	// Statement is generated SQL text plus named parameters.
	Statement = core.Statement
	// Params maps parameter names to values.
	Params = core.Params
	// GenerateEvent describes one finished generation call.
	GenerateEvent = core.GenerateEvent
	// GenerateHook is called after every generation call.
	GenerateHook = core.GenerateHook
	// Typed is a Generator bound to one record type.
	Typed[T any] = core.Typed[T]

	// Provider enumerates the supported database families.
	Provider = dialects.Provider

	// Descriptor is the mapping metadata of a record type.
	Descriptor = schema.Descriptor
	// Definition declares an entity in YAML.
	Definition = schema.Definition
	// Row is a record of a Definition-based entity.
	Row = schema.Row
	// Tabler names a record's table.
	Tabler = schema.Tabler
	// SchemaTabler names a record's table schema.
	SchemaTabler = schema.SchemaTabler
	// Describer supplies a record's descriptor without reflection.
	Describer = schema.Describer
	// FieldValuer exposes a record's field values by name.
	FieldValuer = schema.FieldValuer
	// FieldSetter accepts a record's field values by name.
	FieldSetter = schema.FieldSetter

	// Logger receives one debug line per generated statement.
	Logger = logger.Logger
	// Tracer opens one span per generation call.
	Tracer = tracer.Tracer
)

// Supported providers.
const (
	MSSQL      = dialects.MSSQL
	MySQL      = dialects.MySQL
	SQLite     = dialects.SQLite
	PostgreSQL = dialects.PostgreSQL
)

// Re-export core functions.
var (
	New                       = core.New
	NewForProvider            = core.NewForProvider
	NewStatement              = core.NewStatement
	WithQuote                 = core.WithQuote
	WithLogger                = core.WithLogger
	WithTracer                = core.WithTracer
	WithClock                 = core.WithClock
	WithHook                  = core.WithHook
	WithSensitiveParams       = core.WithSensitiveParams
	WithTemplateCacheCapacity = core.WithTemplateCacheCapacity

	Describe       = schema.Describe
	DescribeType   = schema.DescribeType
	DescriptorOf   = schema.DescriptorOf
	LoadDefinition = schema.LoadDefinition
	LoadRows       = schema.LoadRows

	NewSlogAdapter = logger.NewSlogAdapter
	NewZapAdapter  = logger.NewZapAdapter
	NewOtelTracer  = tracer.NewOtelTracer
)

// Errors, see package core.
var (
	ErrUnsupportedDialect = core.ErrUnsupportedDialect
	ErrUnsupportedJoin    = core.ErrUnsupportedJoin
	ErrEmptyInput         = core.ErrEmptyInput
	ErrMetadata           = core.ErrMetadata
	ErrNoKey              = core.ErrNoKey
	ErrUnknownField       = core.ErrUnknownField
	ErrInvalidModelType   = core.ErrInvalidModelType
	ErrDuplicateParam     = core.ErrDuplicateParam
	ErrKeyMismatch        = core.ErrKeyMismatch
)

// For binds g to record type T.
func For[T any](g *Generator) *Typed[T] {
	return core.For[T](g)
}
