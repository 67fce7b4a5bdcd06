package dispatch

import (
    "encoding/json"
    "fmt"

    "github.com/walletera/food-delivery/internal/domain/shared"
)

const (
    StateMachineCreateOrder = "CreateOrderSaga"
    StateMachineCancelOrder = "CancelOrderSaga"
    StateMachineReviseOrder = "ReviseOrderSaga"

    keyTaskContext = "task_context"
)

var routes = map[string]map[string]bool{
    StateMachineCreateOrder: set(
        ActionValidateConsumer,
        ActionCreateTicket,
        ActionCancelCreateTicket,
        ActionAuthorizeCard,
        ActionConfirmCreateTicket,
        ActionApproveOrder,
        ActionRejectOrder,
    ),
    StateMachineCancelOrder: set(
        ActionBeginCancelOrder,
        ActionUndoBeginCancelOrder,
        ActionBeginCancelTicket,
        ActionUndoBeginCancelTicket,
        ActionConfirmCancelTicket,
        ActionConfirmCancelOrder,
        ActionReverseAuthorizeCard,
    ),
    StateMachineReviseOrder: set(
        ActionBeginReviseOrder,
        ActionUndoBeginReviseOrder,
        ActionBeginReviseTicket,
        ActionUndoBeginReviseTicket,
        ActionReviseAuthorizeCard,
        ActionConfirmReviseTicket,
        ActionConfirmReviseOrder,
    ),
}

type TaskContext struct {
    StateMachine string `json:"state_machine"`
    Action       string `json:"action"`
}

// Route checks that the state machine may invoke the action.
func Route(taskContext TaskContext) error {
    actions, ok := routes[taskContext.StateMachine]
    if !ok {
        return fmt.Errorf("%w: unknown state machine %q", shared.ErrInvalidSagaCommand, taskContext.StateMachine)
    }
    if !actions[taskContext.Action] {
        return fmt.Errorf("%w: %s does not handle %q", shared.ErrUnsupportedRoute, taskContext.StateMachine, taskContext.Action)
    }
    return nil
}

// DecodeCommand builds the command of the given action from a json object
// holding its fields, and validates it.
func DecodeCommand(taskContext TaskContext, fields []byte) (Command, error) {
    if err := Route(taskContext); err != nil {
        return nil, err
    }
    decode, ok := decoders[taskContext.Action]
    if !ok {
        return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedRoute, taskContext.Action)
    }
    command, err := decode(fields)
    if err != nil {
        return nil, err
    }
    if err := command.Validate(); err != nil {
        return nil, err
    }
    return command, nil
}

// Encode renders a step invocation: the command fields next to a
// task_context object naming the state machine and action.
func Encode(stateMachine string, command Command) ([]byte, error) {
    raw, err := json.Marshal(command)
    if err != nil {
        return nil, err
    }
    fields := map[string]json.RawMessage{}
    if err := json.Unmarshal(raw, &fields); err != nil {
        return nil, err
    }
    fields[keyTaskContext], err = json.Marshal(TaskContext{StateMachine: stateMachine, Action: command.Action()})
    if err != nil {
        return nil, err
    }
    return json.Marshal(fields)
}

// Decode parses a step invocation produced by Encode.
func Decode(raw []byte) (TaskContext, Command, error) {
    fields := map[string]json.RawMessage{}
    if err := json.Unmarshal(raw, &fields); err != nil {
        return TaskContext{}, nil, fmt.Errorf("%w: %s", shared.ErrInvalidSagaCommand, err.Error())
    }
    rawTaskContext, ok := fields[keyTaskContext]
    if !ok {
        return TaskContext{}, nil, fmt.Errorf("%w: %s is missing", shared.ErrInvalidSagaCommand, keyTaskContext)
    }
    var taskContext TaskContext
    if err := json.Unmarshal(rawTaskContext, &taskContext); err != nil {
        return TaskContext{}, nil, fmt.Errorf("%w: %s", shared.ErrInvalidSagaCommand, err.Error())
    }
    command, err := DecodeCommand(taskContext, raw)
    if err != nil {
        return taskContext, nil, err
    }
    return taskContext, command, nil
}

func set(actions ...string) map[string]bool {
    s := make(map[string]bool, len(actions))
    for _, action := range actions {
        s[action] = true
    }
    return s
}
