package schema

import (
	"errors"
	"fmt"
)

// Errors returned while building or using entity metadata. ErrNoKey and
// ErrUnknownField are kinds of ErrMetadata.
var (
	// ErrMetadata is returned when mapping metadata is inconsistent or unusable.
	ErrMetadata = errors.New("invalid mapping metadata")
	// ErrNoKey is returned when an operation needs key columns and none resolve.
	ErrNoKey = fmt.Errorf("%w: no key column resolved", ErrMetadata)
	// ErrUnknownField is returned when a field name does not exist on the entity.
	ErrUnknownField = fmt.Errorf("%w: unknown field", ErrMetadata)
	// ErrInvalidModelType is returned when an entity is not a struct, a pointer
	// to a struct, or a Describer.
	ErrInvalidModelType = errors.New("invalid model type")
)
