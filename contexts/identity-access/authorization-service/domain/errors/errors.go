package errors

import "errors"

var (
	ErrInvalidActor      = errors.New("invalid actor")
	ErrInvalidAction     = errors.New("invalid action")
	ErrInvalidKind       = errors.New("invalid resource kind")
	ErrInvalidVisibility = errors.New("invalid visibility")
	ErrInvalidRole       = errors.New("invalid role")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("resource not found")
)
