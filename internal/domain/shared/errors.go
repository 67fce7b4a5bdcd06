package shared

import (
    "errors"
    "fmt"
)

// Error kinds. Every domain error wraps exactly one of them so callers can
// branch with errors.Is on the kind without knowing the concrete error.
var (
    ErrUnsupportedStateTransition = errors.New("unsupported state transition")
    ErrNotFound                   = errors.New("not found")
    ErrAlreadyExists              = errors.New("already exists")
    ErrBusinessRuleViolation      = errors.New("business rule violation")
    ErrConcurrencyConflict        = errors.New("concurrency conflict")
    ErrUnsupportedRoute           = errors.New("unsupported route")
    ErrInvalidSagaCommand         = errors.New("invalid saga command")
    ErrUnavailable                = errors.New("unavailable")
)

var ErrInvalidCurrency = NewError(ErrBusinessRuleViolation, "invalid currency")

// Error is a named domain error belonging to one of the kinds above.
type Error struct {
    kind error
    msg  string
}

func NewError(kind error, msg string) *Error {
    return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
    return e.msg
}

func (e *Error) Unwrap() error {
    return e.kind
}

func (e *Error) Kind() error {
    return e.kind
}

func UnsupportedTransition(aggregate string, operation string, state string) error {
    return fmt.Errorf("%w: %s.%s is not allowed in state %s", ErrUnsupportedStateTransition, aggregate, operation, state)
}

// IsTransient reports whether err is worth retrying with fresh state.
func IsTransient(err error) bool {
    return errors.Is(err, ErrConcurrencyConflict) || errors.Is(err, ErrUnavailable)
}

// KindOf returns the kind err belongs to, or nil when err is not a domain error.
func KindOf(err error) error {
    for _, kind := range []error{
        ErrUnsupportedStateTransition,
        ErrNotFound,
        ErrAlreadyExists,
        ErrBusinessRuleViolation,
        ErrConcurrencyConflict,
        ErrUnsupportedRoute,
        ErrInvalidSagaCommand,
        ErrUnavailable,
    } {
        if errors.Is(err, kind) {
            return kind
        }
    }
    return nil
}
