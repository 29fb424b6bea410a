package service

import (
	"errors"
	"fmt"
)

// ValidationError rejects an operation locally: bad amount, wrong status,
// insufficient balance. No state was changed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// validationf builds a ValidationError with a user-visible message.
func validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError signals that a concurrent actor already transitioned the
// entity: the duel was filled, the pool was closed, the slot was taken.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func conflictf(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps an adapter I/O failure. The operation was aborted and
// any partial debit was refunded best-effort before this surfaced.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// InvariantViolation reports a post-write verification mismatch during
// settlement. The operation is never retried: a retry could double-pay.
type InvariantViolation struct {
	Message string
}

func (e *InvariantViolation) Error() string {
	return e.Message
}

func invariantf(format string, args ...any) error {
	return &InvariantViolation{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a local validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a lost race against a concurrent actor.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// UserMessage extracts the short user-visible message for an error. Store
// failures and invariant violations map to a generic failure line so
// internals never leak into chat.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return "something went wrong, try again later"
}
