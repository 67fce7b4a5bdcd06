package saga

import (
    "errors"

    "github.com/walletera/food-delivery/internal/dispatch"
    "github.com/walletera/food-delivery/internal/domain/accounting"
    "github.com/walletera/food-delivery/internal/domain/consumer"
    "github.com/walletera/food-delivery/internal/domain/kitchen"
    "github.com/walletera/food-delivery/internal/domain/order"
)

// Step is one forward action of a saga. Errors listed in Compensable stop
// the saga and trigger compensation; any other error fails the run.
type Step struct {
    Action       string
    Compensation string
    Compensable  []error
    // BestEffort steps log their failure and let the saga go on.
    BestEffort bool
}

func (s Step) compensable(err error) bool {
    for _, kind := range s.Compensable {
        if errors.Is(err, kind) {
            return true
        }
    }
    return false
}

type Definition struct {
    Name  string
    Steps []Step
    // OnCompensated runs after every step compensation, e.g. rejecting the
    // order that started the saga.
    OnCompensated string
}

func (d Definition) step(action string) (Step, bool) {
    for _, step := range d.Steps {
        if step.Action == action {
            return step, true
        }
    }
    return Step{}, false
}

var CreateOrder = Definition{
    Name: dispatch.StateMachineCreateOrder,
    Steps: []Step{
        {
            Action:      dispatch.ActionValidateConsumer,
            Compensable: []error{consumer.ErrConsumerVerificationFailed, consumer.ErrConsumerNotFound},
        },
        {
            Action:       dispatch.ActionCreateTicket,
            Compensation: dispatch.ActionCancelCreateTicket,
        },
        {
            Action:      dispatch.ActionAuthorizeCard,
            Compensable: []error{accounting.ErrCardAuthorizationFailed, accounting.ErrAccountNotFound},
        },
        {Action: dispatch.ActionConfirmCreateTicket},
        {Action: dispatch.ActionApproveOrder},
    },
    OnCompensated: dispatch.ActionRejectOrder,
}

// CancelOrder declares no compensation: a failure after begin_cancel_order
// leaves the run FAILED for a manual resume.
var CancelOrder = Definition{
    Name: dispatch.StateMachineCancelOrder,
    Steps: []Step{
        {Action: dispatch.ActionBeginCancelOrder},
        {Action: dispatch.ActionBeginCancelTicket},
        {Action: dispatch.ActionConfirmCancelTicket},
        {Action: dispatch.ActionConfirmCancelOrder},
        {Action: dispatch.ActionReverseAuthorizeCard, BestEffort: true},
    },
}

var ReviseOrder = Definition{
    Name: dispatch.StateMachineReviseOrder,
    Steps: []Step{
        {
            Action:       dispatch.ActionBeginReviseOrder,
            Compensation: dispatch.ActionUndoBeginReviseOrder,
            Compensable:  []error{order.ErrOrderMinimumNotMet},
        },
        {
            Action:       dispatch.ActionBeginReviseTicket,
            Compensation: dispatch.ActionUndoBeginReviseTicket,
            Compensable:  []error{kitchen.ErrUnknownLineItem, kitchen.ErrTicketNotFound},
        },
        {
            Action:      dispatch.ActionReviseAuthorizeCard,
            Compensable: []error{accounting.ErrCardAuthorizationFailed, accounting.ErrAuthorizationNotFound, accounting.ErrAccountNotFound},
        },
        {Action: dispatch.ActionConfirmReviseTicket},
        {Action: dispatch.ActionConfirmReviseOrder},
    },
}

func Definitions() []Definition {
    return []Definition{CreateOrder, CancelOrder, ReviseOrder}
}
