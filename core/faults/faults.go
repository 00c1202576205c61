package faults

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can branch on the failure class
// instead of matching message strings.
type Kind int

const (
	// KindUnknown is the zero value for errors that carry no kind.
	KindUnknown Kind = iota
	// KindValidation marks malformed input rejected before any mutation.
	KindValidation
	// KindConflict marks a write refused because it would violate an
	// invariant, such as a double-booked vehicle.
	KindConflict
	// KindNotFound marks a lookup for an entity that does not exist.
	KindNotFound
	// KindInfrastructure marks a failure of a backing system. The caller
	// should not retry inline; the next orchestrator cycle is the retry.
	KindInfrastructure
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindInfrastructure:
		return "infrastructure"
	default:
		return "unknown"
	}
}

// Error is a classified error optionally tagged with the entity it concerns.
type Error struct {
	Kind   Kind
	Entity string // entity identifier, e.g. "schedule sch-42"
	Err    error
}

func (e *Error) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Entity, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error from a format string.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies an existing error. It returns nil when err is nil.
func Wrap(kind Kind, entity string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Entity: entity, Err: err}
}

// Validationf builds a KindValidation error.
func Validationf(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// Conflictf builds a KindConflict error.
func Conflictf(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

// NotFoundf builds a KindNotFound error.
func NotFoundf(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// Infraf builds a KindInfrastructure error.
func Infraf(format string, args ...any) *Error {
	return New(KindInfrastructure, format, args...)
}

// KindOf extracts the kind of err, unwrapping as needed.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsConflict reports whether err is classified as a conflict.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsNotFound reports whether err is classified as not found.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsValidation reports whether err is classified as a validation failure.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
