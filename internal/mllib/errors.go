package mllib

import "errors"

// BadParamError signals invalid or unusable caller-supplied parameters.
type BadParamError struct{ msg string }

func (e BadParamError) Error() string { return e.msg }

// ErrBadParam constructs a BadParamError.
func ErrBadParam(msg string) error { return BadParamError{msg: msg} }

// IsBadParam reports whether err (or anything it wraps) is a BadParamError.
func IsBadParam(err error) bool {
	var e BadParamError
	return errors.As(err, &e)
}

// InternalError signals an unexpected failure of an operation the service
// itself is responsible for.
type InternalError struct{ msg string }

func (e InternalError) Error() string { return e.msg }

// ErrInternal constructs an InternalError.
func ErrInternal(msg string) error { return InternalError{msg: msg} }

// IsInternal reports whether err (or anything it wraps) is an InternalError.
func IsInternal(err error) bool {
	var e InternalError
	return errors.As(err, &e)
}
