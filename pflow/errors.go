package pflow

import "github.com/pkg/errors"

// Errors
var (
	ErrMalformedPattern     = errors.New("malformed pattern")
	ErrUnknownNode          = errors.New("unknown node")
	ErrInvalidMeasurement   = errors.New("invalid measurement")
	ErrUnresolvedDependency = errors.New("unresolved measurement dependency")
	ErrMissingOutcome       = errors.New("missing measurement outcome")
	ErrBadEncoding          = errors.New("bad pattern encoding")
	ErrBadCatalogParam      = errors.New("bad catalog param")
)
