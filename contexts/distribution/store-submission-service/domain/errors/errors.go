package errors

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidStoreType    = errors.New("invalid store type")
	ErrForbidden           = errors.New("forbidden")
	ErrApplicationNotFound = errors.New("application not found")
	ErrReleaseNotFound     = errors.New("release not found")
	ErrStoreAppNotFound    = errors.New("store app not found")
	ErrStoreAppExists      = errors.New("store app already configured")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrInvalidTransition   = errors.New("invalid submission state transition")
	ErrSubmissionRejected  = errors.New("submission rejected by store review")
	ErrStoreUnsupported    = errors.New("operation not supported by store type")
	ErrStoreUnavailable    = errors.New("store backend unavailable")
)

// TransientError marks a store backend failure worth retrying.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps an error as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether an error or any wrapped cause is retryable.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}
