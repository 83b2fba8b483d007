package db

import "github.com/pkg/errors"

// ErrNotFound is returned if nothing is found.
var ErrNotFound = errors.New("not found")

// ErrEmptyUpdate is returned when an update carries no effective fields; the
// statement is never executed.
var ErrEmptyUpdate = errors.New("no fields to update")
