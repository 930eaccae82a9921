package errors

import "errors"

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInvalidVisibility    = errors.New("invalid visibility")
	ErrInvalidRole          = errors.New("invalid role")
	ErrConflict             = errors.New("organization name already taken")
	ErrForbidden            = errors.New("forbidden")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrMemberExists         = errors.New("member already exists")
	ErrLastAdmin            = errors.New("organization would be left without an admin")
	ErrOrganizationNotEmpty = errors.New("organization still owns applications")
)
