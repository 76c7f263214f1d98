package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by the planning and substitution services.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrAtomicityViolation = errors.New("atomicity violation")
	ErrCycleDetected      = errors.New("bom cycle detected")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// CycleError reports the consumption path that revisits an item
type CycleError struct {
	Path []ItemCode
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, code := range e.Path {
		parts[i] = string(code)
	}
	return fmt.Sprintf("%s: %s", ErrCycleDetected, strings.Join(parts, " -> "))
}

// Unwrap lets errors.Is match ErrCycleDetected
func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}
