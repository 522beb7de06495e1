package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrSourceNotFound    = errors.New("source not found")
	ErrColumnNotFound    = errors.New("column not found")
	ErrNotProcessed      = errors.New("no processed columns found")
	ErrDivisionUndefined = errors.New("division undefined: empty vocabulary")
)
