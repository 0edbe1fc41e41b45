package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrFunnelNotFound = fmt.Errorf("%w: funnel", ErrNotFound)
	ErrQueryNotFound  = fmt.Errorf("%w: query", ErrNotFound)

	// Funnel data errors
	ErrEmptyFunnel    = errors.New("empty funnel")
	ErrNegativeStage  = errors.New("negative stage value")
	ErrInvalidStage   = errors.New("stage value is not a finite number")
	ErrLayoutMismatch = errors.New("band count does not match stage count")

	// Rendering errors
	ErrNoSurface         = errors.New("drawing surface is not available")
	ErrUnsupportedFormat = errors.New("unsupported render format")
	ErrInvalidArea       = errors.New("invalid drawing area")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewFunnelNotFoundError(name string) error {
	return fmt.Errorf("%w: %s", ErrFunnelNotFound, name)
}

func NewNegativeStageError(label string, value float64) error {
	return fmt.Errorf("%w: stage %q has value %g", ErrNegativeStage, label, value)
}

func NewInvalidStageError(label string, value float64) error {
	return fmt.Errorf("%w: stage %q has value %g", ErrInvalidStage, label, value)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDataError(err error) bool {
	return errors.Is(err, ErrEmptyFunnel) ||
		errors.Is(err, ErrNegativeStage) ||
		errors.Is(err, ErrInvalidStage)
}

func IsRenderError(err error) bool {
	return errors.Is(err, ErrNoSurface) ||
		errors.Is(err, ErrLayoutMismatch) ||
		errors.Is(err, ErrUnsupportedFormat)
}
