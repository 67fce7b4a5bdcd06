package dispatch

import (
    "errors"

    "github.com/walletera/food-delivery/internal/domain/accounting"
    "github.com/walletera/food-delivery/internal/domain/consumer"
    "github.com/walletera/food-delivery/internal/domain/delivery"
    "github.com/walletera/food-delivery/internal/domain/kitchen"
    "github.com/walletera/food-delivery/internal/domain/order"
    "github.com/walletera/food-delivery/internal/domain/restaurant"
    "github.com/walletera/food-delivery/internal/domain/shared"
)

// errorCodes names the errors that cross process boundaries. Specific errors
// come before the kinds they belong to.
var errorCodes = []struct {
    code string
    err  error
}{
    {"ConsumerVerificationFailed", consumer.ErrConsumerVerificationFailed},
    {"ConsumerNotFound", consumer.ErrConsumerNotFound},
    {"CardAuthorizationFailed", accounting.ErrCardAuthorizationFailed},
    {"AccountNotFound", accounting.ErrAccountNotFound},
    {"AuthorizationNotFound", accounting.ErrAuthorizationNotFound},
    {"OrderMinimumNotMet", order.ErrOrderMinimumNotMet},
    {"OrderNotFound", order.ErrOrderNotFound},
    {"LineItemNotFound", order.ErrLineItemNotFound},
    {"TicketNotFound", kitchen.ErrTicketNotFound},
    {"TicketLineItemNotFound", kitchen.ErrUnknownLineItem},
    {"RestaurantNotFound", restaurant.ErrRestaurantNotFound},
    {"MenuItemNotFound", restaurant.ErrMenuItemNotFound},
    {"NoAvailableCourier", delivery.ErrNoAvailableCourier},
    {"InvalidCurrency", shared.ErrInvalidCurrency},
    {"UnsupportedStateTransition", shared.ErrUnsupportedStateTransition},
    {"NotFound", shared.ErrNotFound},
    {"AlreadyExists", shared.ErrAlreadyExists},
    {"BusinessRuleViolation", shared.ErrBusinessRuleViolation},
    {"ConcurrencyConflict", shared.ErrConcurrencyConflict},
    {"UnsupportedRoute", shared.ErrUnsupportedRoute},
    {"InvalidSagaCommand", shared.ErrInvalidSagaCommand},
    {"Unavailable", shared.ErrUnavailable},
}

const codeInternal = "InternalError"

type ErrorResponse struct {
    ErrorCode string `json:"error_code"`
    Message   string `json:"message"`
}

func ErrorCode(err error) string {
    for _, entry := range errorCodes {
        if errors.Is(err, entry.err) {
            return entry.code
        }
    }
    return codeInternal
}

func NewErrorResponse(err error) ErrorResponse {
    return ErrorResponse{ErrorCode: ErrorCode(err), Message: err.Error()}
}

// RemoteError is an error answered by another process. It unwraps to the
// local error registered under the same code, so errors.Is behaves as if
// the step had run in process.
type RemoteError struct {
    Code    string
    Message string
    cause   error
}

func (e *RemoteError) Error() string {
    return e.Message
}

func (e *RemoteError) Unwrap() error {
    return e.cause
}

func (r ErrorResponse) Err() error {
    for _, entry := range errorCodes {
        if entry.code == r.ErrorCode {
            return &RemoteError{Code: r.ErrorCode, Message: r.Message, cause: entry.err}
        }
    }
    return &RemoteError{Code: r.ErrorCode, Message: r.Message}
}
