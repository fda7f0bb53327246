package service

import "strings"

// ValidationError carries every missing or malformed field from a single
// request so the form can show them all at once.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}
