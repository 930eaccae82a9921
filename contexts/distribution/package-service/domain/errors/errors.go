package errors

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("package already exists")
	ErrApplicationNotFound = errors.New("application not found")
	ErrPackageNotFound     = errors.New("package not found")
	ErrUnsupportedFormat   = errors.New("unsupported package format")
	ErrMalformedPackage    = errors.New("malformed package archive")
	ErrPackageReleased     = errors.New("package has released builds")
	ErrSequenceContention  = errors.New("build number contention")
)
