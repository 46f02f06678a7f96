// Package apperr holds the error taxonomy shared by the client-side state
// machines. Validation and disabled-operation errors are raised before any
// network call; RemoteError wraps a rejected API request.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTransition        = errors.New("invalid status transition")
	ErrOperationDisabled        = errors.New("operation disabled")
	ErrQuantityExceedsAvailable = errors.New("quantity exceeds available stock")
)

// ValidationError is a client-side field check that blocked a submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Invalid builds a ValidationError.
func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Disabled wraps ErrOperationDisabled with the reason the action is unavailable.
func Disabled(reason string) error {
	return fmt.Errorf("%w: %s", ErrOperationDisabled, reason)
}

// Transition wraps ErrInvalidTransition with the attempted edge.
func Transition(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// ExceedsAvailable wraps ErrQuantityExceedsAvailable with both quantities.
func ExceedsAvailable(requested, available int) error {
	return fmt.Errorf("%w: requested %d, available %d", ErrQuantityExceedsAvailable, requested, available)
}

// RemoteError is a request the server rejected (or that never got an answer).
type RemoteError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsRemote reports whether err is a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// StepFailure records one failed sub-step of a multi-step operation.
type StepFailure struct {
	Step string
	Err  error
}

// PartialFailure reports sub-steps that failed while the umbrella operation
// still went ahead.
type PartialFailure struct {
	Op       string
	Failures []StepFailure
}

func (e *PartialFailure) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Step + ": " + f.Err.Error()
	}
	return fmt.Sprintf("%s: %d step(s) failed: %s", e.Op, len(e.Failures), strings.Join(parts, "; "))
}

func (e *PartialFailure) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Message returns user-facing text for err: the server's message for remote
// errors, the field message for validation errors, otherwise fallback.
func Message(err error, fallback string) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if fallback != "" {
		return fallback
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
