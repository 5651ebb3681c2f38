package pipeline

import "errors"

var (
	// ErrShapeMismatch is returned when an original and its mask do not have
	// identical dimensions. The pair is skipped; the batch continues.
	ErrShapeMismatch = errors.New("original and mask dimensions differ")

	// ErrUndersized is returned when a source is smaller than the requested
	// crop size, so no valid crop position exists.
	ErrUndersized = errors.New("source smaller than requested crop size")
)
