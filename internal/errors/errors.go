package errors

import (
	"errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}

// ForbiddenError means the actor's role is not permitted to perform the
// requested action. Never retried automatically.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func IsForbiddenError(err error) (*ForbiddenError, bool) {
	var fe *ForbiddenError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// ConflictError means a concurrent writer changed the order between read and
// write, or an immutable value would be overwritten with a different one.
// Safe to retry against freshly reloaded state.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// InvalidTransitionError means the requested status is not a direct successor
// of the current status in the state graph, regardless of role.
type InvalidTransitionError struct {
	Message string
}

func (e *InvalidTransitionError) Error() string {
	return e.Message
}

func NewInvalidTransitionError(message string) *InvalidTransitionError {
	return &InvalidTransitionError{Message: message}
}

func IsInvalidTransitionError(err error) (*InvalidTransitionError, bool) {
	var te *InvalidTransitionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// InvalidStateError means the entity is in a state that does not admit the
// requested operation at all (e.g. mutating a completed order).
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

func NewInvalidStateError(message string) *InvalidStateError {
	return &InvalidStateError{Message: message}
}

func IsInvalidStateError(err error) (*InvalidStateError, bool) {
	var se *InvalidStateError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// NoOpError means the requested status equals the current one. Distinct from
// Forbidden and InvalidTransition so callers can treat it as an idempotent
// retry instead of a failure.
type NoOpError struct {
	Message string
}

func (e *NoOpError) Error() string {
	return e.Message
}

func NewNoOpError(message string) *NoOpError {
	return &NoOpError{Message: message}
}

func IsNoOpError(err error) (*NoOpError, bool) {
	var ne *NoOpError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// BusyError means the per-order lock could not be acquired within the bounded
// wait. Retryable by the caller.
type BusyError struct {
	Message string
}

func (e *BusyError) Error() string {
	return e.Message
}

func NewBusyError(message string) *BusyError {
	return &BusyError{Message: message}
}

func IsBusyError(err error) (*BusyError, bool) {
	var be *BusyError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}
