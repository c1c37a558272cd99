package storage

import "errors"

// ErrNotFound is returned when the requested record or position does not exist.
var ErrNotFound = errors.New("not found")
