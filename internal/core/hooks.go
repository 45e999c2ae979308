package core

import (
	"context"
	"time"
)

// GenerateEvent describes one finished generation call.
type GenerateEvent struct {
	// Operation is the generator operation, e.g. "insert" or "bulk_update".
	Operation string
	Table     string
	// SQL is the generated text; empty when Error is set.
	SQL string
	// Params are the bound parameters, unmasked.
	Params Params
	// Rows is the number of entities the statement covers.
	Rows     int
	Duration time.Duration
	Error    error
}

// GenerateHook is called after every generation call, successful or not.
//
// Example:
//
//	g, _ := sqlgen.New("mssql",
//	    sqlgen.WithHook(func(ctx context.Context, e sqlgen.GenerateEvent) {
//	        metrics.Observe(e.Operation, e.Duration)
//	    }))
type GenerateHook func(ctx context.Context, event GenerateEvent)
