package analysis

import "errors"

var (
	// ErrInvalidModuleSpec marks module nameplate constants that cannot
	// describe a real module (non-positive power, voltage or ratio).
	ErrInvalidModuleSpec = errors.New("invalid module spec")

	// ErrInvalidRange marks a time filter whose start is after its end.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrMalformedSeries marks an input series whose row shape does not match
	// the configured string count, or whose timestamps go backwards.
	ErrMalformedSeries = errors.New("malformed series")
)
