package saga

import (
    "context"

    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"

    "github.com/walletera/werrors"
)

var _ events.Handler = (*Triggers)(nil)

// Triggers starts one saga run per triggering order event.
type Triggers struct {
    events.NopHandler
    orchestrator *Orchestrator
}

func NewTriggers(orchestrator *Orchestrator) *Triggers {
    return &Triggers{orchestrator: orchestrator}
}

type createOrderData struct {
    OrderID        string                 `json:"order_id"`
    ConsumerID     string                 `json:"consumer_id"`
    RestaurantID   string                 `json:"restaurant_id"`
    OrderLineItems []shared.OrderLineItem `json:"order_line_items"`
    OrderTotal     shared.Money           `json:"order_total"`
}

func (t *Triggers) HandleOrderCreated(ctx context.Context, event events.OrderCreatedEvent) werrors.WError {
    return t.start(ctx, CreateOrder.Name, event.Envelope.AggregateType, event.AggregateID, event.SequenceNumber, createOrderData{
        OrderID:        event.Data.OrderID,
        ConsumerID:     event.Data.OrderDetails.ConsumerID,
        RestaurantID:   event.Data.OrderDetails.RestaurantID,
        OrderLineItems: event.Data.OrderDetails.OrderLineItems,
        OrderTotal:     event.Data.OrderDetails.OrderTotal,
    })
}

func (t *Triggers) HandleCancelOrderSagaRequested(ctx context.Context, event events.CancelOrderSagaRequestedEvent) werrors.WError {
    return t.start(ctx, CancelOrder.Name, event.Envelope.AggregateType, event.AggregateID, event.SequenceNumber, event.Data)
}

func (t *Triggers) HandleReviseOrderSagaRequested(ctx context.Context, event events.ReviseOrderSagaRequestedEvent) werrors.WError {
    return t.start(ctx, ReviseOrder.Name, event.Envelope.AggregateType, event.AggregateID, event.SequenceNumber, event.Data)
}

func (t *Triggers) start(ctx context.Context, sagaName string, aggregateType string, aggregateID string, sequenceNumber uint64, data any) werrors.WError {
    _, err := t.orchestrator.Start(ctx, sagaName, RunID(aggregateType, aggregateID, sequenceNumber), data)
    return shared.ToWError(err)
}
