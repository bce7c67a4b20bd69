package services

import (
	"errors"
	"fmt"
)

type ServiceError struct {
	Status  int
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

func ErrNotFound(msg string) error {
	return ServiceError{Status: 404, Message: msg}
}

func ErrBadRequest(msg string) error {
	return ServiceError{Status: 400, Message: msg}
}

func ErrForbidden(msg string) error {
	return ServiceError{Status: 403, Message: msg}
}

func ErrUnauthorized(msg string) error {
	return ServiceError{Status: 401, Message: msg}
}

// ErrValidation marks bad or missing filter input. Never retried, always
// surfaced verbatim to the caller.
func ErrValidation(msg string) error {
	return ServiceError{Status: 400, Message: msg}
}

// ErrDependency marks the fatal-only case where no meaningful partial answer
// exists (both the person directory and the post store failed).
func ErrDependency(msg string) error {
	return ServiceError{Status: 502, Message: msg}
}

func IsValidation(err error) bool {
	var svcErr ServiceError
	return errors.As(err, &svcErr) && svcErr.Status == 400
}

func IsDependency(err error) bool {
	var svcErr ServiceError
	return errors.As(err, &svcErr) && svcErr.Status == 502
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
