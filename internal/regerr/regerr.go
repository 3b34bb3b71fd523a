// Package regerr defines the error taxonomy for the registration engine.
// Handlers map kinds to HTTP statuses so clients can tell "sold out"
// (retryable after adjusting the request) apart from "fix your input".
package regerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation policy and status mapping.
type Kind int

const (
	// KindValidation rejects the submission before any write.
	KindValidation Kind = iota
	// KindConflict is safe to retry after the client adjusts the request.
	KindConflict
	// KindDependency is a precondition failure outside the transaction.
	KindDependency
	// KindFatal covers unexpected datastore or infrastructure failures.
	KindFatal
)

// Error carries a kind alongside the originating message. The message is
// surfaced verbatim to the caller.
type Error struct {
	Kind Kind
	Code string
	err  error
}

func (e *Error) Error() string { return e.err.Error() }

func (e *Error) Unwrap() error { return e.err }

// New builds a classified error with a formatted message.
func New(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, err: fmt.Errorf(format, args...)}
}

// Wrap classifies an existing error without changing its message.
func Wrap(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, err: err}
}

// Error codes
const (
	CodeMissingFields             = "MISSING_FIELDS"
	CodeAgeBelowMinimum           = "AGE_BELOW_MINIMUM"
	CodeIdentityInvalid           = "IDENTITY_INVALID"
	CodeIdentityMismatch          = "IDENTITY_MISMATCH"
	CodeCapacityExceeded          = "CAPACITY_EXCEEDED"
	CodeInsufficientStock         = "INSUFFICIENT_STOCK"
	CodeDuplicateRegistration     = "DUPLICATE_REGISTRATION"
	CodeAccountProvisioningFailed = "ACCOUNT_PROVISIONING_FAILED"
	CodeInternal                  = "INTERNAL"
)

// KindOf returns the kind of err, defaulting to KindFatal for unclassified
// errors (datastore unavailable, transaction timeout).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindFatal
}

// CodeOf returns the code of err, or CodeInternal when unclassified.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
