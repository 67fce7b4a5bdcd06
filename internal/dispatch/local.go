package dispatch

import (
    "context"

    "github.com/walletera/food-delivery/internal/domain/accounting"
    "github.com/walletera/food-delivery/internal/domain/consumer"
    "github.com/walletera/food-delivery/internal/domain/kitchen"
    "github.com/walletera/food-delivery/internal/domain/order"
    "github.com/walletera/food-delivery/internal/domain/shared"
)

var _ Handler = (*Participants)(nil)

// Participants executes saga step commands against the in-process services.
type Participants struct {
    orders     *order.Service
    consumers  *consumer.Service
    kitchen    *kitchen.Service
    accounting *accounting.Service
}

func NewParticipants(orders *order.Service, consumers *consumer.Service, kitchen *kitchen.Service, accounting *accounting.Service) *Participants {
    return &Participants{
        orders:     orders,
        consumers:  consumers,
        kitchen:    kitchen,
        accounting: accounting,
    }
}

// LocalExecutor runs commands in process.
type LocalExecutor struct {
    handler Handler
}

func NewLocalExecutor(handler Handler) *LocalExecutor {
    return &LocalExecutor{handler: handler}
}

func (l *LocalExecutor) Execute(ctx context.Context, stateMachine string, command Command) (Result, error) {
    err := Route(TaskContext{StateMachine: stateMachine, Action: command.Action()})
    if err != nil {
        return nil, err
    }
    err = command.Validate()
    if err != nil {
        return nil, err
    }
    return command.Accept(ctx, l.handler)
}

// Dispatch decodes a step invocation and runs it against handler.
func Dispatch(ctx context.Context, handler Handler, raw []byte) (TaskContext, Result, error) {
    taskContext, command, err := Decode(raw)
    if err != nil {
        return taskContext, nil, err
    }
    result, err := command.Accept(ctx, handler)
    return taskContext, result, err
}

func (p *Participants) HandleValidateConsumer(ctx context.Context, command ValidateConsumer) (Result, error) {
    return nil, p.consumers.ValidateOrderForConsumer(ctx, command.ConsumerID, command.OrderTotal)
}

func (p *Participants) HandleCreateTicket(ctx context.Context, command CreateTicket) (Result, error) {
    lineItems := make([]shared.TicketLineItem, 0, len(command.LineItems))
    for _, item := range command.LineItems {
        lineItems = append(lineItems, shared.TicketLineItem{
            MenuID:   item.MenuID,
            Name:     item.Name,
            Quantity: item.Quantity,
        })
    }
    ticketID, err := p.kitchen.CreateTicket(ctx, command.OrderID, command.RestaurantID, lineItems)
    if err != nil {
        return nil, err
    }
    return Result{"ticket_id": ticketID}, nil
}

func (p *Participants) HandleConfirmCreateTicket(ctx context.Context, command ConfirmCreateTicket) (Result, error) {
    _, err := p.kitchen.ConfirmCreate(ctx, command.TicketID)
    return nil, err
}

func (p *Participants) HandleCancelCreateTicket(ctx context.Context, command CancelCreateTicket) (Result, error) {
    _, err := p.kitchen.CancelCreate(ctx, command.TicketID)
    return nil, err
}

func (p *Participants) HandleBeginCancelTicket(ctx context.Context, command BeginCancelTicket) (Result, error) {
    _, err := p.kitchen.BeginCancel(ctx, command.OrderID)
    return nil, err
}

func (p *Participants) HandleUndoBeginCancelTicket(ctx context.Context, command UndoBeginCancelTicket) (Result, error) {
    _, err := p.kitchen.UndoBeginCancel(ctx, command.OrderID)
    return nil, err
}

func (p *Participants) HandleConfirmCancelTicket(ctx context.Context, command ConfirmCancelTicket) (Result, error) {
    _, err := p.kitchen.ConfirmCancel(ctx, command.OrderID)
    return nil, err
}

func (p *Participants) HandleBeginReviseTicket(ctx context.Context, command BeginReviseTicket) (Result, error) {
    _, err := p.kitchen.BeginRevise(ctx, command.OrderID, command.OrderRevision.RevisedLineItemQuantities)
    return nil, err
}

func (p *Participants) HandleUndoBeginReviseTicket(ctx context.Context, command UndoBeginReviseTicket) (Result, error) {
    _, err := p.kitchen.UndoBeginRevise(ctx, command.OrderID)
    return nil, err
}

func (p *Participants) HandleConfirmReviseTicket(ctx context.Context, command ConfirmReviseTicket) (Result, error) {
    _, err := p.kitchen.ConfirmRevise(ctx, command.OrderID, command.OrderRevision.RevisedLineItemQuantities)
    return nil, err
}

func (p *Participants) HandleAuthorizeCard(ctx context.Context, command AuthorizeCard) (Result, error) {
    return nil, p.accounting.AuthorizeCard(ctx, command.ConsumerID, command.OrderID, command.OrderTotal)
}

func (p *Participants) HandleReverseAuthorizeCard(ctx context.Context, command ReverseAuthorizeCard) (Result, error) {
    return nil, p.accounting.ReverseAuthorization(ctx, command.ConsumerID, command.OrderID)
}

func (p *Participants) HandleReviseAuthorizeCard(ctx context.Context, command ReviseAuthorizeCard) (Result, error) {
    return nil, p.accounting.ReviseAuthorization(ctx, command.ConsumerID, command.OrderID, command.NewOrderTotal)
}

func (p *Participants) HandleApproveOrder(ctx context.Context, command ApproveOrder) (Result, error) {
    _, err := p.orders.Approve(ctx, command.OrderID)
    return nil, err
}

func (p *Participants) HandleRejectOrder(ctx context.Context, command RejectOrder) (Result, error) {
    _, err := p.orders.Reject(ctx, command.OrderID)
    return nil, err
}

func (p *Participants) HandleBeginCancelOrder(ctx context.Context, command BeginCancelOrder) (Result, error) {
    _, err := p.orders.BeginCancel(ctx, command.OrderID)
    return nil, err
}

func (p *Participants) HandleUndoBeginCancelOrder(ctx context.Context, command UndoBeginCancelOrder) (Result, error) {
    _, err := p.orders.UndoBeginCancel(ctx, command.OrderID)
    return nil, err
}

func (p *Participants) HandleConfirmCancelOrder(ctx context.Context, command ConfirmCancelOrder) (Result, error) {
    _, err := p.orders.ConfirmCancel(ctx, command.OrderID)
    return nil, err
}

func (p *Participants) HandleBeginReviseOrder(ctx context.Context, command BeginReviseOrder) (Result, error) {
    change, err := p.orders.BeginRevise(ctx, command.OrderID, command.OrderRevision)
    if err != nil {
        return nil, err
    }
    return Result{
        "current_order_total": change.CurrentOrderTotal,
        "new_order_total":     change.NewOrderTotal,
        "delta":               change.Delta,
    }, nil
}

func (p *Participants) HandleUndoBeginReviseOrder(ctx context.Context, command UndoBeginReviseOrder) (Result, error) {
    _, err := p.orders.UndoBeginRevise(ctx, command.OrderID)
    return nil, err
}

func (p *Participants) HandleConfirmReviseOrder(ctx context.Context, command ConfirmReviseOrder) (Result, error) {
    _, err := p.orders.ConfirmRevise(ctx, command.OrderID, command.OrderRevision)
    return nil, err
}
