package compare

import "errors"

var (
	// ErrValidation marks construction failures: empty or missing join
	// columns, invalid inputs, negative tolerances. It is never recoverable
	// by retrying with the same inputs.
	ErrValidation = errors.New("comparison validation failed")

	// ErrAmbiguousSentinel is returned when the placeholder used to group
	// null join-key values occurs as real data in a string join column.
	// Proceeding would silently corrupt duplicate-key grouping.
	ErrAmbiguousSentinel = errors.New("null sentinel collides with join column data")

	// ErrSchemaResolution marks an invariant violation in the merge step: a
	// source column could not be located in the joined schema under either
	// its own or its suffixed name.
	ErrSchemaResolution = errors.New("column missing from merged schema")
)
