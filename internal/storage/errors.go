package storage

import "errors"

// ErrNotFound is returned by lookup methods when no row matches.
var ErrNotFound = errors.New("not found")
