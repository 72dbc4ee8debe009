// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrNotFound is returned when a note id is not in the store.
	ErrNotFound = errors.New("not found")
	// ErrBadFolder is returned for folder names the persisted format
	// cannot represent.
	ErrBadFolder = errors.New("invalid folder name")
)
