package store

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("not authorized")
	ErrNotFound   = errors.New("not found")
	ErrStore      = errors.New("store unavailable")
)
