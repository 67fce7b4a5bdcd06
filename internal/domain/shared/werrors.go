package shared

import (
    "errors"

    "github.com/walletera/werrors"
)

// ToWError translates a domain error into the error taxonomy used at the
// messaging boundary. Transient errors ask for a requeue.
func ToWError(err error) werrors.WError {
    if err == nil {
        return nil
    }
    var wErr werrors.WError
    if errors.As(err, &wErr) {
        return wErr
    }
    if IsTransient(err) {
        return werrors.NewRetryableInternalError("%s", err.Error())
    }
    return werrors.NewNonRetryableInternalError("%s", err.Error())
}
