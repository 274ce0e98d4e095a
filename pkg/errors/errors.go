// Package errors provides the error wrapping helper used across the service.
package errors

import "fmt"

// Wrap annotates err with context, preserving the original for errors.Is/As.
// A nil err is passed through untouched.
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
