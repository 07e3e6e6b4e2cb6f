package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError covers malformed input: bad intervals, bad slot
// numbers, missing fields. Never retried by callers.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidInterval builds the validation error used when an interval's
// end does not come after its start.
func InvalidInterval() *ValidationError {
	return &ValidationError{Msg: "end_time must be after start_time"}
}

// NotFoundError marks an absent spot, reservation or user.
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func NotFound(resource string, id interface{}) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// PermissionError marks an operation attempted by the wrong owner or
// renter. No state is mutated when it is returned.
type PermissionError struct {
	Msg string
}

func (e *PermissionError) Error() string { return e.Msg }

func Permissionf(format string, args ...interface{}) *PermissionError {
	return &PermissionError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError marks an overlap with a blocking reservation on the
// same (spot, slot). Callers may retry with a different slot or time.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflictf(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsPermission(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// HTTPStatus maps an error from the core to the status code the API
// surfaces. Anything outside the taxonomy is a 500.
func HTTPStatus(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsPermission(err):
		return http.StatusForbidden
	case IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
