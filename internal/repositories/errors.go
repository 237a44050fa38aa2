package repositories

import "errors"

// Sentinel errors returned by repositories so handlers can map them to
// HTTP status codes without inspecting driver errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrInvalidID     = errors.New("invalid ID format")
)
