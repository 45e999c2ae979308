package core

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/sqlgen/internal/schema"
)

const carColumns = "Cars.Id, Cars.CarName AS Name, Cars.OwnerId, Cars.Modified, Cars.State"

func TestSelect(t *testing.T) {
	g := newTestGenerator(t, "mssql")

	tests := []struct {
		name     string
		includes []string
		want     string
	}{
		{
			name: "no joins",
			want: "SELECT " + carColumns + " FROM Cars WHERE Cars.State != @SoftDeleteValue",
		},
		{
			name:     "left join",
			includes: []string{"Owner"},
			want: "SELECT " + carColumns + ", o.Id, o.Name FROM Cars" +
				" LEFT JOIN Users AS o ON Cars.OwnerId = o.Id WHERE Cars.State != @SoftDeleteValue",
		},
		{
			name:     "inner join on collection",
			includes: []string{"Phones"},
			want: "SELECT " + carColumns + ", Phones.Id, Phones.CarId, Phones.Number FROM Cars" +
				" INNER JOIN Phones AS Phones ON Cars.Id = Phones.CarId WHERE Cars.State != @SoftDeleteValue",
		},
		{
			name:     "right join",
			includes: []string{"Garage"},
			want: "SELECT " + carColumns + ", g.Id, g.Name FROM Cars" +
				" RIGHT JOIN Garage AS g ON Cars.OwnerId = g.Id WHERE Cars.State != @SoftDeleteValue",
		},
		{
			name:     "cross join has no ON",
			includes: []string{"Extras"},
			want: "SELECT " + carColumns + ", Extras.Code FROM Cars" +
				" CROSS JOIN Extra AS Extras WHERE Cars.State != @SoftDeleteValue",
		},
		{
			name:     "joins in request order",
			includes: []string{"Phones", "Owner"},
			want: "SELECT " + carColumns + ", Phones.Id, Phones.CarId, Phones.Number, o.Id, o.Name FROM Cars" +
				" INNER JOIN Phones AS Phones ON Cars.Id = Phones.CarId" +
				" LEFT JOIN Users AS o ON Cars.OwnerId = o.Id WHERE Cars.State != @SoftDeleteValue",
		},
		{
			name:     "navigation without join metadata is skipped",
			includes: []string{"Computed"},
			want:     "SELECT " + carColumns + " FROM Cars WHERE Cars.State != @SoftDeleteValue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := g.Select(&Car{}, tt.includes...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stmt.SQL())
			assert.Equal(t, Params{SoftDeleteParam: StatusDeleted}, stmt.Params())
		})
	}
}

func TestSelect_Quoted(t *testing.T) {
	g := newTestGenerator(t, "mssql", WithQuote(true))

	stmt, err := g.Select(Car{}, "Owner")
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT [Cars].[Id], [Cars].[CarName] AS [Name], [Cars].[OwnerId], [Cars].[Modified], [Cars].[State], [o].[Id], [o].[Name]"+
			" FROM [Cars] LEFT JOIN [Users] AS [o] ON [Cars].[OwnerId] = [o].[Id] WHERE [Cars].[State] != @SoftDeleteValue",
		stmt.SQL())
}

// TestSelect_QuotingWrapsEachIdentifierOnce strips parameters and checks that
// every remaining identifier carries exactly one quote pair.
func TestSelect_QuotingWrapsEachIdentifierOnce(t *testing.T) {
	g := newTestGenerator(t, "postgres", WithQuote(true))

	stmt, err := g.Select(Car{}, "Owner", "Phones")
	require.NoError(t, err)

	sql := stmt.SQL()
	assert.NotContains(t, sql, `""`)
	for _, ident := range []string{"Cars", "CarName", "Name", "OwnerId", "Users", "o", "Phones", "CarId", "Number"} {
		assert.Contains(t, sql, `"`+ident+`"`)
	}

	plain := newTestGenerator(t, "postgres")
	stmt, err = plain.Select(Car{}, "Owner", "Phones")
	require.NoError(t, err)
	assert.NotContains(t, stmt.SQL(), `"`)
}

// TestSelect_RightJoinOnSQLite checks the unsupported join fails before any
// text is produced, and the failure is not cached.
func TestSelect_RightJoinOnSQLite(t *testing.T) {
	g := newTestGenerator(t, "sqlite")

	stmt, err := g.Select(&Car{}, "Owner", "Garage")
	assert.ErrorIs(t, err, ErrUnsupportedJoin)
	assert.Nil(t, stmt)
	assert.Equal(t, 0, g.CacheStats().Size)

	stmt, err = g.Select(&Car{}, "Owner")
	require.NoError(t, err)
	assert.NotContains(t, stmt.SQL(), "RIGHT JOIN")
}

func TestSelect_UnknownInclude(t *testing.T) {
	g := newTestGenerator(t, "mssql")

	_, err := g.Select(&Car{}, "Wheels")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSelect_ModelForms(t *testing.T) {
	g := newTestGenerator(t, "mysql")

	byValue, err := g.Select(Product{})
	require.NoError(t, err)
	byPointer, err := g.Select(&Product{})
	require.NoError(t, err)
	byType, err := g.Select(reflect.TypeOf(Product{}))
	require.NoError(t, err)
	d, err := schema.Describe(reflect.TypeOf(Product{}))
	require.NoError(t, err)
	byDescriptor, err := g.Select(d)
	require.NoError(t, err)

	want := "SELECT Products.Id, Products.Name, Products.Price FROM Products"
	for _, stmt := range []*Statement{byValue, byPointer, byType, byDescriptor} {
		assert.Equal(t, want, stmt.SQL())
		assert.Zero(t, stmt.Len())
	}
}

func TestSelect_SchemaQualified(t *testing.T) {
	g := newTestGenerator(t, "mssql")

	stmt, err := g.Select(Invoice{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT Invoices.ID, Invoices.Number, Invoices.Total FROM dbo.Invoices", stmt.SQL())
}

func TestSelect_TemplateCache(t *testing.T) {
	g := newTestGenerator(t, "mssql")

	for i := 0; i < 3; i++ {
		_, err := g.Select(&Car{}, "Owner")
		require.NoError(t, err)
	}
	_, err := g.Select(&Car{})
	require.NoError(t, err)

	stats := g.CacheStats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
}

func TestSelectFirst(t *testing.T) {
	tests := []struct {
		dialect string
		model   any
		want    string
	}{
		{"mssql", Product{}, "SELECT TOP 1 Products.Id, Products.Name, Products.Price FROM Products"},
		{"sqlite", Product{}, "SELECT Products.Id, Products.Name, Products.Price FROM Products LIMIT 1"},
		{"mysql", Product{}, "SELECT Products.Id, Products.Name, Products.Price FROM Products LIMIT 1"},
		{"mssql", Car{}, "SELECT TOP 1 " + carColumns + " FROM Cars WHERE Cars.State != @SoftDeleteValue"},
		{"postgres", Car{}, "SELECT " + carColumns + " FROM Cars WHERE Cars.State != @SoftDeleteValue LIMIT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect+"/"+reflect.TypeOf(tt.model).Name(), func(t *testing.T) {
			g := newTestGenerator(t, tt.dialect)
			stmt, err := g.SelectFirst(tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stmt.SQL())
		})
	}
}

func TestSelectFirst_DoesNotShareSelectTemplate(t *testing.T) {
	g := newTestGenerator(t, "mssql")

	all, err := g.Select(Product{})
	require.NoError(t, err)
	first, err := g.SelectFirst(Product{})
	require.NoError(t, err)

	assert.False(t, strings.Contains(all.SQL(), "TOP"))
	assert.True(t, strings.HasPrefix(first.SQL(), "SELECT TOP 1 "))
}

func TestSelectByKey(t *testing.T) {
	g := newTestGenerator(t, "mssql")

	stmt, err := g.SelectByKey(Product{}, []any{7})
	require.NoError(t, err)
	assert.Equal(t, "SELECT Products.Id, Products.Name, Products.Price FROM Products WHERE Products.Id = @Id", stmt.SQL())
	assert.Equal(t, Params{"Id": 7}, stmt.Params())

	stmt, err = g.SelectByKey(Car{}, []any{3}, "Owner")
	require.NoError(t, err)
	assert.Equal(t, "SELECT "+carColumns+", o.Id, o.Name FROM Cars LEFT JOIN Users AS o ON Cars.OwnerId = o.Id"+
		" WHERE Cars.Id = @Id AND Cars.State != @SoftDeleteValue", stmt.SQL())
	assert.Equal(t, []string{"Id", SoftDeleteParam}, stmt.Names())

	stmt, err = g.SelectByKey(CompositeKey{}, []any{1, "A", 2})
	require.NoError(t, err)
	assert.Equal(t, "SELECT CompositeKey.tenant_id AS TenantID, CompositeKey.code AS Code, CompositeKey.revision AS Revision, CompositeKey.label AS Label"+
		" FROM CompositeKey WHERE CompositeKey.tenant_id = @TenantID AND CompositeKey.code = @Code AND CompositeKey.revision = @Revision", stmt.SQL())
}

func TestSelectByKey_Errors(t *testing.T) {
	g := newTestGenerator(t, "mssql")

	_, err := g.SelectByKey(Product{}, nil)
	assert.ErrorIs(t, err, ErrKeyMismatch)

	_, err = g.SelectByKey(CompositeKey{}, []any{1})
	assert.ErrorIs(t, err, ErrKeyMismatch)

	type keyless struct {
		Name string
	}
	_, err = g.SelectByKey(keyless{}, []any{1})
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestCount(t *testing.T) {
	g := newTestGenerator(t, "mssql")

	stmt, err := g.Count(Product{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM Products", stmt.SQL())
	assert.Zero(t, stmt.Len())

	stmt, err = g.Count(&Car{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM Cars WHERE Cars.State != @SoftDeleteValue", stmt.SQL())
	assert.Equal(t, Params{SoftDeleteParam: StatusDeleted}, stmt.Params())

	quoted := newTestGenerator(t, "mysql", WithQuote(true))
	stmt, err = quoted.Count(Invoice{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM `dbo`.`Invoices`", stmt.SQL())
}

func TestCount_Errors(t *testing.T) {
	g := newTestGenerator(t, "mssql")

	_, err := g.Count(nil)
	assert.ErrorIs(t, err, ErrInvalidModelType)

	_, err = g.Count("Products")
	assert.ErrorIs(t, err, ErrInvalidModelType)
}
