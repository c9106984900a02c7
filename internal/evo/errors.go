package evo

import (
	"errors"
	"fmt"
)

// Domain errors for evolution runs.
var (
	// ErrDimensionMismatch indicates a candidate and target of different sizes.
	ErrDimensionMismatch = errors.New("evo: candidate and target grid sizes differ")

	// ErrInvalidConfig indicates an engine configuration outside valid bounds.
	ErrInvalidConfig = errors.New("evo: invalid configuration")
)

// GenerationError wraps a fatal error with the generation it occurred in.
type GenerationError struct {
	Generation int
	Wrapped    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %d: %v", e.Generation, e.Wrapped)
}

func (e *GenerationError) Unwrap() error {
	return e.Wrapped
}
