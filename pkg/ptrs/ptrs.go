// Package ptrs provides pointer utilities for optional request fields.
package ptrs

// Ptr returns a pointer to its argument.
func Ptr[T any](t T) *T {
	return &t
}
