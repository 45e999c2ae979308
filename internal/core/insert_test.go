package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, dialect string, opts ...Option) *Generator {
	t.Helper()
	g, err := New(dialect, append([]Option{WithClock(fixedClock)}, opts...)...)
	require.NoError(t, err)
	return g
}

// TestInsert_MSSQL covers the canonical identity insert.
func TestInsert_MSSQL(t *testing.T) {
	g := newTestGenerator(t, "mssql")

	stmt, err := g.Insert(&Product{Name: "Widget", Price: 9.5})
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO Products (Name, Price) VALUES (@Name, @Price) SELECT SCOPE_IDENTITY() AS Id", stmt.SQL())
	assert.Equal(t, Params{"Name": "Widget", "Price": 9.5}, stmt.Params())
	assert.Equal(t, []string{"Name", "Price"}, stmt.Names())

	_, stamped := stmt.Timestamp()
	assert.False(t, stamped)
}

func TestInsert_IdentityFragmentPerDialect(t *testing.T) {
	tests := []struct {
		dialect string
		quote   bool
		want    string
	}{
		{"mssql", false, "INSERT INTO Products (Name, Price) VALUES (@Name, @Price) SELECT SCOPE_IDENTITY() AS Id"},
		{"mysql", false, "INSERT INTO Products (Name, Price) VALUES (@Name, @Price); SELECT CONVERT(LAST_INSERT_ID(), SIGNED INTEGER) AS Id"},
		{"sqlite", false, "INSERT INTO Products (Name, Price) VALUES (@Name, @Price); SELECT LAST_INSERT_ROWID() AS Id"},
		{"postgres", false, "INSERT INTO Products (Name, Price) VALUES (@Name, @Price) RETURNING Id"},
		{"sqlserver", true, "INSERT INTO [Products] ([Name], [Price]) VALUES (@Name, @Price) SELECT SCOPE_IDENTITY() AS [Id]"},
		{"mysql", true, "INSERT INTO `Products` (`Name`, `Price`) VALUES (@Name, @Price); SELECT CONVERT(LAST_INSERT_ID(), SIGNED INTEGER) AS `Id`"},
		{"sqlite3", true, "INSERT INTO Products (Name, Price) VALUES (@Name, @Price); SELECT LAST_INSERT_ROWID() AS Id"},
		{"pgx", true, `INSERT INTO "Products" ("Name", "Price") VALUES (@Name, @Price) RETURNING "Id"`},
	}

	for _, tt := range tests {
		name := tt.dialect
		if tt.quote {
			name += "/quoted"
		}
		t.Run(name, func(t *testing.T) {
			g := newTestGenerator(t, tt.dialect, WithQuote(tt.quote))

			stmt, err := g.Insert(Product{Name: "Widget", Price: 9.5})
			require.NoError(t, err)
			assert.Equal(t, tt.want, stmt.SQL())
		})
	}
}

func TestInsert_WithoutIdentity(t *testing.T) {
	g := newTestGenerator(t, "postgres")

	stmt, err := g.Insert(&CompositeKey{TenantID: 1, Code: "A", Revision: 2, Label: "first"})
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO CompositeKey (tenant_id, code, revision, label) VALUES (@TenantID, @Code, @Revision, @Label)", stmt.SQL())
	assert.Equal(t, Params{"TenantID": 1, "Code": "A", "Revision": 2, "Label": "first"}, stmt.Params())
}

func TestInsert_SchemaQualifiedTable(t *testing.T) {
	g := newTestGenerator(t, "mssql")
	stmt, err := g.Insert(&Invoice{Number: "INV-1", Total: 10})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO dbo.Invoices (Number, Total) VALUES (@Number, @Total) SELECT SCOPE_IDENTITY() AS ID", stmt.SQL())

	quoted := newTestGenerator(t, "mssql", WithQuote(true))
	stmt, err = quoted.Insert(&Invoice{Number: "INV-1", Total: 10})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO [dbo].[Invoices] ([Number], [Total]) VALUES (@Number, @Total) SELECT SCOPE_IDENTITY() AS [ID]", stmt.SQL())
}

// TestInsert_TimestampDoesNotMutateEntity checks that the auto-timestamp is
// bound and returned, and the caller's value is left alone.
func TestInsert_TimestampDoesNotMutateEntity(t *testing.T) {
	g := newTestGenerator(t, "mssql")
	car := &Car{Name: "Golf", OwnerId: 7, State: StatusActive}

	stmt, err := g.Insert(car)
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO Cars (CarName, OwnerId, Secret, Modified, State) VALUES (@Name, @OwnerId, @Secret, @Modified, @State) SELECT SCOPE_IDENTITY() AS Id", stmt.SQL())
	assert.True(t, car.Modified.IsZero(), "entity must not be mutated")

	ts, ok := stmt.Timestamp()
	require.True(t, ok)
	assert.True(t, ts.Equal(fixedClock()))
	assert.Equal(t, 12, ts.Hour(), "offset=2 shifts the wall clock")

	bound, _ := stmt.Value("Modified")
	assert.Equal(t, ts, bound)
	state, _ := stmt.Value("State")
	assert.Equal(t, StatusActive, state)

	require.NoError(t, g.ApplyTimestamp(stmt, car))
	assert.Equal(t, ts, car.Modified)
}

func TestInsert_Errors(t *testing.T) {
	g := newTestGenerator(t, "mssql")

	stmt, err := g.Insert(nil)
	assert.ErrorIs(t, err, ErrInvalidModelType)
	assert.Nil(t, stmt)

	_, err = g.Insert(42)
	assert.ErrorIs(t, err, ErrInvalidModelType)

	type identityOnly struct {
		ID int `db:",identity"`
	}
	_, err = g.Insert(&identityOnly{})
	assert.ErrorIs(t, err, ErrMetadata)
}

func TestBulkInsert(t *testing.T) {
	g := newTestGenerator(t, "mssql")

	stmt, err := g.BulkInsert([]Product{
		{Name: "A", Price: 1},
		{Name: "B", Price: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO Products (Name, Price) VALUES (@Name0, @Price0), (@Name1, @Price1)", stmt.SQL())
	assert.Equal(t, []string{"Name0", "Price0", "Name1", "Price1"}, stmt.Names())
	assert.Equal(t, Params{"Name0": "A", "Price0": 1.0, "Name1": "B", "Price1": 2.0}, stmt.Params())
}

func TestBulkInsert_AcceptsPointersAndInterfaces(t *testing.T) {
	g := newTestGenerator(t, "sqlite")

	byPointer, err := g.BulkInsert([]*Product{{Name: "A"}, {Name: "B"}})
	require.NoError(t, err)

	byInterface, err := g.BulkInsert([]any{Product{Name: "A"}, &Product{Name: "B"}})
	require.NoError(t, err)

	assert.Equal(t, byPointer.SQL(), byInterface.SQL())
	assert.Equal(t, byPointer.Params(), byInterface.Params())
}

// TestBulkInsert_OneBindingPerRowAndColumn checks parameter names are unique
// across rows for any batch size.
func TestBulkInsert_OneBindingPerRowAndColumn(t *testing.T) {
	g := newTestGenerator(t, "postgres")

	for _, n := range []int{1, 2, 11, 120} {
		rows := make([]Product, n)
		stmt, err := g.BulkInsert(rows)
		require.NoError(t, err)

		assert.Equal(t, n*2, stmt.Len())
		seen := make(map[string]bool, stmt.Len())
		for _, name := range stmt.Names() {
			assert.False(t, seen[name], name)
			seen[name] = true
		}
		assert.True(t, seen["Name0"])
		assert.True(t, seen["Price0"])
	}
}

func TestBulkInsert_SharedTimestamp(t *testing.T) {
	ticks := 0
	clock := func() time.Time {
		ticks++
		return fixedClock().Add(time.Duration(ticks) * time.Minute)
	}
	g := newTestGenerator(t, "mssql", WithClock(clock))

	cars := []Car{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	stmt, err := g.BulkInsert(cars)
	require.NoError(t, err)
	assert.Equal(t, 1, ticks, "one clock reading per call")

	first, _ := stmt.Value("Modified0")
	last, _ := stmt.Value("Modified2")
	assert.Equal(t, first, last)

	for _, c := range cars {
		assert.True(t, c.Modified.IsZero())
	}
	require.NoError(t, For[Car](g).ApplyTimestampAll(stmt, cars))
	for _, c := range cars {
		assert.Equal(t, first, c.Modified)
	}
}

func TestBulkInsert_Errors(t *testing.T) {
	g := newTestGenerator(t, "mssql")

	tests := []struct {
		name  string
		input any
		want  error
	}{
		{"nil", nil, ErrEmptyInput},
		{"empty slice", []Product{}, ErrEmptyInput},
		{"nil slice", []Product(nil), ErrEmptyInput},
		{"not a slice", Product{}, ErrInvalidModelType},
		{"mixed types", []any{Product{}, Owner{}}, ErrInvalidModelType},
		{"nil row", []any{Product{}, nil}, ErrInvalidModelType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := g.BulkInsert(tt.input)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, stmt)
		})
	}
}

func TestBulkInsert_CollidingParameterNames(t *testing.T) {
	g := newTestGenerator(t, "mssql")

	for _, n := range []int{2, 11} {
		lots := make([]Lot, n)
		for i := range lots {
			lots[i] = Lot{Id: i, Code: "A", Code1: "B"}
		}

		stmt, err := g.BulkInsert(lots)
		assert.ErrorIs(t, err, ErrMetadata, "%d rows", n)
		assert.NotErrorIs(t, err, ErrDuplicateParam)
		assert.Nil(t, stmt)
	}

	stmt, err := g.Insert(&Lot{Id: 1, Code: "A", Code1: "B"})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO Lots (Id, Code, Code1) VALUES (@Id, @Code, @Code1)", stmt.SQL())
}
