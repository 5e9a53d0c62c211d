package solver

import "errors"

var (
	// ErrNilGrid indicates a search was started without a grid.
	ErrNilGrid = errors.New("solver: grid must not be nil")
	// ErrEnumerationOverflow indicates rows+columns-2 does not fit the 64-bit bitstring counter.
	ErrEnumerationOverflow = errors.New("solver: grid too large for exhaustive enumeration")
	// ErrTooManySteps indicates the grid exceeds the caller's exhaustive step limit.
	ErrTooManySteps = errors.New("solver: grid exceeds exhaustive step limit")
	// ErrUnknownAlgorithm indicates an unregistered algorithm name.
	ErrUnknownAlgorithm = errors.New("solver: unknown algorithm")
	// ErrInvalidPath indicates a path failed verification.
	ErrInvalidPath = errors.New("solver: invalid path")
)
