package service

import "errors"

// Validation sentinels, wrapped by ValidationError
var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrMissingCategory = errors.New("missing category")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidLimit    = errors.New("invalid limit")
)

// ErrStoreUnavailable wraps every failure of the underlying store or catalog
var ErrStoreUnavailable = errors.New("expense store unavailable")

// ValidationError reports a rejected input field. It is always detected
// before the store is touched and carries a reason safe to show to users.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is, or wraps, a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func invalid(field, reason string, sentinel error) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: sentinel}
}
