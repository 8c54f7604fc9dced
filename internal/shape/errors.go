package shape

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateGeometry indicates a vertex set that cannot enclose a volume.
	ErrDegenerateGeometry = errors.New("shape: degenerate geometry")

	// ErrMalformedIndices indicates an index buffer that is not a list of
	// in-range triangles.
	ErrMalformedIndices = errors.New("shape: malformed indices")

	// ErrInvalidMaterial indicates non-positive mass or negative restitution.
	ErrInvalidMaterial = errors.New("shape: invalid material")
)

// Error wraps a builder failure with the shape kind being built.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Kind, e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: err, Detail: fmt.Sprintf(format, args...)}
}
