package model

import "github.com/pkg/errors"

// Error kinds. They are always wrapped with the offending value, so match
// them with errors.Is.
var (
	ErrInvalidFormat           = errors.New("invalid format")
	ErrInvalidRescale          = errors.New("invalid rescale")
	ErrUnresolvableSubdivision = errors.New("unresolvable subdivision")
	ErrOutOfBounds             = errors.New("out of bounds")
	ErrUnsupportedMeter        = errors.New("unsupported meter")
)
