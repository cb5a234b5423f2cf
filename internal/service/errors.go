package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mmynk/formbuilder/internal/storage"
)

// Kind classifies a service error. The HTTP layer maps kinds to status codes.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a failure the caller can act on. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func invalid(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func conflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

func errNotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// lookupErr turns storage.ErrNotFound into a not-found service error and
// wraps anything else.
func lookupErr(what string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &Error{Kind: KindNotFound, Message: what + " not found", Err: err}
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

// requireObject checks that raw is a JSON object. Documents are stored as
// sent, so nothing else is checked.
func requireObject(field string, raw json.RawMessage) error {
	if len(raw) == 0 {
		return invalid("%s is required", field)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return invalid("%s must be a JSON object", field)
	}
	return nil
}
