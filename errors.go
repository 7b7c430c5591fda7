package apexmark

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyInput  = errors.New("markdown content cannot be empty")
	ErrRender      = errors.New("HTML rendering failed")
	ErrUnknownMode = errors.New("unknown processor mode")
)
