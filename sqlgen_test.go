package sqlgen_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/coregx/sqlgen"
)

func TestFacade_Errors(t *testing.T) {
	_, err := sqlgen.New("db2")
	assert.ErrorIs(t, err, sqlgen.ErrUnsupportedDialect)

	g, err := sqlgen.NewForProvider(sqlgen.SQLite)
	require.NoError(t, err)

	_, err = g.Select(Order{}, "Nope")
	assert.ErrorIs(t, err, sqlgen.ErrUnknownField)
	assert.ErrorIs(t, err, sqlgen.ErrMetadata)

	_, err = g.BulkUpdate([]Order{})
	assert.ErrorIs(t, err, sqlgen.ErrEmptyInput)

	_, err = g.SelectByKey(Order{}, []any{1, 2})
	assert.ErrorIs(t, err, sqlgen.ErrKeyMismatch)

	_, err = g.Insert(42)
	assert.ErrorIs(t, err, sqlgen.ErrInvalidModelType)

	type noKey struct{ Name string }
	_, err = g.Update(&noKey{})
	assert.ErrorIs(t, err, sqlgen.ErrNoKey)

	stmt := sqlgen.NewStatement()
	require.NoError(t, stmt.Bind("A", 1))
	assert.ErrorIs(t, stmt.Bind("A", 2), sqlgen.ErrDuplicateParam)
}

func TestFacade_Adapters(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	core, logs := observer.New(zap.DebugLevel)

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	for _, l := range []sqlgen.Logger{sqlgen.NewSlogAdapter(slogger), sqlgen.NewZapAdapter(zap.New(core))} {
		g, err := sqlgen.New("postgres",
			sqlgen.WithLogger(l),
			sqlgen.WithTracer(sqlgen.NewOtelTracer(tp.Tracer("facade"))))
		require.NoError(t, err)

		_, err = g.Count(Product{})
		require.NoError(t, err)
	}

	assert.Contains(t, buf.String(), "statement generated")
	assert.Equal(t, 1, logs.FilterMessage("statement generated").Len())
	assert.Len(t, exporter.GetSpans(), 2)
}

func TestFacade_Hook(t *testing.T) {
	var events []sqlgen.GenerateEvent
	g, err := sqlgen.New("mssql", sqlgen.WithHook(func(_ context.Context, e sqlgen.GenerateEvent) {
		events = append(events, e)
	}))
	require.NoError(t, err)

	_, err = sqlgen.For[Order](g).Update(&Order{Id: 1, Total: 5})
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "update", events[0].Operation)
	assert.Equal(t, "Orders", events[0].Table)
	assert.Equal(t, sqlgen.Params{
		"CustomerId": 0,
		"Total":      5.0,
		"UpdatedAt":  events[0].Params["UpdatedAt"],
		"Status":     0,
		"Id":         1,
	}, events[0].Params)
}
