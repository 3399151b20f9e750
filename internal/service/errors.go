package service

import (
	"errors"
)

// Business error kinds. Handlers translate these into HTTP responses; the
// kinds stay distinct even when the wire format is a uniform message so a
// lost race (InvalidStateError) is never confused with a system fault or an
// authorization failure.

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " does not exist"
}

// InvalidStateError reports a business-rule violation: deciding a request
// that is no longer PENDIENTE, or creating one against an inactive type.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return e.Reason
}

// AuthorizationError reports an actor who is not allowed to perform the
// transition.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return e.Reason
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}

// IsAuthorization reports whether err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var target *AuthorizationError
	return errors.As(err, &target)
}
