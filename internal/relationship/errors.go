package relationship

import (
	"errors"
	"fmt"
)

// Kind classifies domain failures for the transport layer.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindInvalidState
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a terminal domain failure. Match it with errors.Is against
// ErrNotFound, ErrInvalidState or ErrConflict.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same Kind, so callers can compare against the
// package sentinels without caring about the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidState = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrConflict     = &Error{Kind: KindConflict, Message: "conflict"}
)

// ErrDuplicateMembership is returned by Store implementations when inserting a
// member would violate the one-active-membership constraint.
var ErrDuplicateMembership = errors.New("duplicate active membership")

func notFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidState(format string, args ...any) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func isDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateMembership)
}
