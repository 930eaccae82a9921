package errors

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidVersion      = errors.New("invalid semantic version")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("release already exists")
	ErrApplicationNotFound = errors.New("application not found")
	ErrPackageNotFound     = errors.New("package not found")
	ErrReleaseNotFound     = errors.New("release not found")
	ErrUpgradeNotFound     = errors.New("upgrade not found")
	ErrEnvironmentUnknown  = errors.New("unknown environment")
	ErrReleaseEnabled      = errors.New("release is enabled")
	ErrReleaseSubmitted    = errors.New("release has store submissions")
	ErrNoEnabledRelease    = errors.New("no enabled release")
	ErrSequenceContention  = errors.New("release number contention")
)
