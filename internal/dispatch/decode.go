package dispatch

import (
    "encoding/json"
    "fmt"

    "github.com/walletera/food-delivery/internal/domain/shared"
)

type decoder func(payload []byte) (Command, error)

var decoders = map[string]decoder{
    ActionValidateConsumer:      decodeAs[ValidateConsumer],
    ActionCreateTicket:          decodeAs[CreateTicket],
    ActionConfirmCreateTicket:   decodeAs[ConfirmCreateTicket],
    ActionCancelCreateTicket:    decodeAs[CancelCreateTicket],
    ActionBeginCancelTicket:     decodeAs[BeginCancelTicket],
    ActionUndoBeginCancelTicket: decodeAs[UndoBeginCancelTicket],
    ActionConfirmCancelTicket:   decodeAs[ConfirmCancelTicket],
    ActionBeginReviseTicket:     decodeAs[BeginReviseTicket],
    ActionUndoBeginReviseTicket: decodeAs[UndoBeginReviseTicket],
    ActionConfirmReviseTicket:   decodeAs[ConfirmReviseTicket],
    ActionAuthorizeCard:         decodeAs[AuthorizeCard],
    ActionReverseAuthorizeCard:  decodeAs[ReverseAuthorizeCard],
    ActionReviseAuthorizeCard:   decodeAs[ReviseAuthorizeCard],
    ActionApproveOrder:          decodeAs[ApproveOrder],
    ActionRejectOrder:           decodeAs[RejectOrder],
    ActionBeginCancelOrder:      decodeAs[BeginCancelOrder],
    ActionUndoBeginCancelOrder:  decodeAs[UndoBeginCancelOrder],
    ActionConfirmCancelOrder:    decodeAs[ConfirmCancelOrder],
    ActionBeginReviseOrder:      decodeAs[BeginReviseOrder],
    ActionUndoBeginReviseOrder:  decodeAs[UndoBeginReviseOrder],
    ActionConfirmReviseOrder:    decodeAs[ConfirmReviseOrder],
}

func decodeAs[C Command](payload []byte) (Command, error) {
    var command C
    if err := json.Unmarshal(payload, &command); err != nil {
        return nil, fmt.Errorf("%w: %s", shared.ErrInvalidSagaCommand, err.Error())
    }
    return command, nil
}

type field struct {
    name  string
    value string
}

func requireFields(action string, fields ...field) error {
    for _, f := range fields {
        if f.value == "" {
            return fmt.Errorf("%w: %s requires %s", shared.ErrInvalidSagaCommand, action, f.name)
        }
    }
    return nil
}
