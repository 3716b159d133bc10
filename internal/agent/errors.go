package agent

import (
	"errors"
	"fmt"
)

// Kind categorizes agent failures so callers can branch without string
// matching.
type Kind string

const (
	// KindConfiguration marks missing required settings, raised at
	// construction time.
	KindConfiguration Kind = "configuration"
	// KindIntrospection marks an unreadable table or column set.
	KindIntrospection Kind = "introspection"
	// KindBackendUnavailable marks a model backend that is unreachable,
	// timed out, or unauthorized.
	KindBackendUnavailable Kind = "backend_unavailable"
	// KindExecution marks a statement the engine rejected or failed.
	KindExecution Kind = "execution"
)

// Error is the structured failure value carried inside a Result. SQL holds
// the attempted statement when one was rendered, even on failure.
type Error struct {
	Kind Kind
	Msg  string
	SQL  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether err is an agent Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var agentErr *Error
	if errors.As(err, &agentErr) {
		return agentErr.Kind == kind
	}
	return false
}
