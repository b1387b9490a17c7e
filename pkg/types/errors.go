package types

import (
	"errors"
	"fmt"
)

// ErrNoCropNeeded is returned when source and destination share the exact
// same aspect ratio, so a plain resize gives the same result as any crop.
var ErrNoCropNeeded = errors.New("no cropping needed: aspect ratios are equal")

// GeometryError reports invalid dimensions or regions. It signals a caller bug.
type GeometryError struct {
	Op     string
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s: invalid geometry: %s", e.Op, e.Reason)
}

// BackendError wraps a failure of an image backend primitive
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %s failed: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsGeometryError reports whether err is or wraps a GeometryError
func IsGeometryError(err error) bool {
	var ge *GeometryError
	return errors.As(err, &ge)
}

// IsBackendError reports whether err is or wraps a BackendError
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
