package core

import (
	"errors"

	"github.com/coregx/sqlgen/internal/dialects"
	"github.com/coregx/sqlgen/internal/schema"
)

// Errors returned by statement generation. Every returned error wraps one of
// these; test with errors.Is.
var (
	// ErrUnsupportedDialect is returned for an unknown dialect name.
	ErrUnsupportedDialect = dialects.ErrUnsupportedDialect
	// ErrUnsupportedJoin is returned for a join kind the dialect lacks, such
	// as RIGHT JOIN on SQLite.
	ErrUnsupportedJoin = errors.New("join kind not supported by dialect")
	// ErrEmptyInput is returned by bulk operations called without entities.
	ErrEmptyInput = errors.New("empty input")
	// ErrMetadata is returned for inconsistent mapping metadata.
	ErrMetadata = schema.ErrMetadata
	// ErrNoKey is returned when an operation needs key columns and the entity
	// has none.
	ErrNoKey = schema.ErrNoKey
	// ErrUnknownField is returned when an include names no field.
	ErrUnknownField = schema.ErrUnknownField
	// ErrInvalidModelType is returned for values that are not mappable
	// records, or bulk input mixing record types.
	ErrInvalidModelType = schema.ErrInvalidModelType
	// ErrDuplicateParam is returned when two parameters share a name.
	ErrDuplicateParam = errors.New("duplicate parameter name")
	// ErrKeyMismatch is returned when the number of key values passed to
	// SelectByKey differs from the number of key columns.
	ErrKeyMismatch = errors.New("key value count mismatch")
)

// WrapError wraps an error with additional context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
