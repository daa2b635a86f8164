package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an Error for callers that map it to a transport status.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindForbidden
	KindNotFound
	KindInvalidTransition
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error is the error type returned by every use case.
// KindAuth is a credential failure and KindForbidden a policy denial; both
// match ErrAuth.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Is matches errors of the same kind, so errors.Is(err, ErrNotFound) works on
// any not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == KindAuth {
		return e.Kind == KindAuth || e.Kind == KindForbidden
	}
	return e.Kind == t.Kind
}

var (
	ErrValidation        = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrAuth              = &Error{Kind: KindAuth, Message: "not authorized"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "permission denied"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Message: "invalid status transition"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "conflict"}
)

func validationError(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func fieldError(field, msg string) *Error {
	return validationError(map[string]string{field: msg})
}

func forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func notFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func invalidTransition(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
