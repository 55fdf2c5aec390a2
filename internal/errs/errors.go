// Package errs provides the unified error type used across the s3 resource.
//
// Every subsystem (selector, filestore, resource actions, …) wraps its
// native errors into *errs.Error before returning them to callers. Callers
// use the Is* predicates to decide whether a failure is recoverable without
// importing driver-specific packages.
//
// Usage:
//
//	// In a driver — wrap native errors:
//	return errs.Wrap(errs.ErrKindTimeout, "list timed out", sdkErr)
//
//	// In an action — recover "nothing there":
//	if errs.IsNotFound(err) {
//	    return nil, nil
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // no object, no bucket, nothing listed
	ErrKindConnectionFailed         // cannot reach the object store
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindTransferFailed           // download or upload did not complete
	ErrKindInvalidInput             // bad request from the pipeline
	ErrKindPermissionDenied         // access denied / auth failure
	ErrKindMalformedFilter          // regexp cannot yield a version
	ErrKindInvalidVersion           // version string is not dot-separated digits
	ErrKindIOFailed                 // local file system failure
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindTransferFailed:
		return "transfer_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindMalformedFilter:
		return "malformed_filter"
	case ErrKindInvalidVersion:
		return "invalid_version"
	case ErrKindIOFailed:
		return "io_failed"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all subsystems.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original SDK / os error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a formatted message.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsNotFound reports whether err represents a "nothing there" result
// (missing bucket, missing object, empty listing).
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsTransferFailed reports whether a download or upload failed mid-flight.
func IsTransferFailed(err error) bool {
	return KindOf(err) == ErrKindTransferFailed
}

// IsInvalidInput reports whether err was caused by a bad request.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// IsMalformedFilter reports whether a filter regexp could not be used to
// extract a version.
func IsMalformedFilter(err error) bool {
	return KindOf(err) == ErrKindMalformedFilter
}

// IsInvalidVersion reports whether a version or threshold string failed to parse.
func IsInvalidVersion(err error) bool {
	return KindOf(err) == ErrKindInvalidVersion
}

// IsIOFailed reports whether err came from the local file system.
func IsIOFailed(err error) bool {
	return KindOf(err) == ErrKindIOFailed
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
