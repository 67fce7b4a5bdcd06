package public

import (
    "errors"
    "net/http"

    "github.com/walletera/food-delivery/internal/dispatch"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/pkg/logattr"

    "github.com/danielgtaylor/huma/v2"
)

// apiError is the body of every error response. Its shape is the one
// dispatch.ErrorResponse decodes, so saga step callers read it directly.
type apiError struct {
    status    int
    ErrorCode string `json:"error_code"`
    Message   string `json:"message"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Message }

func newAPIError(status int, code string, message string) huma.StatusError {
    return &apiError{status: status, ErrorCode: code, Message: message}
}

func statusFor(err error) int {
    switch {
    case errors.Is(err, shared.ErrNotFound):
        return http.StatusNotFound
    case errors.Is(err, shared.ErrUnsupportedStateTransition), errors.Is(err, shared.ErrAlreadyExists):
        return http.StatusConflict
    case errors.Is(err, shared.ErrBusinessRuleViolation):
        return http.StatusUnprocessableEntity
    case errors.Is(err, shared.ErrUnsupportedRoute), errors.Is(err, shared.ErrInvalidSagaCommand):
        return http.StatusBadRequest
    case shared.IsTransient(err):
        return http.StatusServiceUnavailable
    default:
        return http.StatusInternalServerError
    }
}

func (s *Server) handleError(err error, operation string) huma.StatusError {
    status := statusFor(err)
    if status == http.StatusInternalServerError {
        s.logger.Error("unexpected error", logattr.Operation(operation), logattr.Error(err.Error()))
        return newAPIError(status, dispatch.ErrorCode(err), "unexpected internal error")
    }
    return newAPIError(status, dispatch.ErrorCode(err), err.Error())
}

func codeForStatus(status int) string {
    switch status {
    case http.StatusBadRequest, http.StatusUnprocessableEntity:
        return "InvalidRequest"
    case http.StatusUnauthorized:
        return "Unauthorized"
    case http.StatusNotFound:
        return "NotFound"
    default:
        return "InternalError"
    }
}
