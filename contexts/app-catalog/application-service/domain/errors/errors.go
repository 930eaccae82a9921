package errors

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidVisibility   = errors.New("invalid visibility")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidOwner        = errors.New("invalid owner")
	ErrConflict            = errors.New("application name already taken in namespace")
	ErrForbidden           = errors.New("forbidden")
	ErrApplicationNotFound = errors.New("application not found")
	ErrOwnerNotFound       = errors.New("owner not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberExists        = errors.New("member already exists")
	ErrLastManager         = errors.New("application would be left without a manager")
	ErrOwnerImmutable      = errors.New("owner membership cannot be changed")
	ErrEnvironmentUnknown  = errors.New("unknown deployment environment")
)
