package ports

import "errors"

// ErrNotFound is returned by single-entity ledger lookups when no row
// matches. The API layer maps it to 404.
var ErrNotFound = errors.New("not found")
