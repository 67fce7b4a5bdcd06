package events

import (
    "context"

    "github.com/walletera/food-delivery/internal/eventstore"

    kitevents "github.com/walletera/eventskit/events"
    "github.com/walletera/werrors"
)

var _ kitevents.Event[Handler] = RestaurantCreatedEvent{}

type RestaurantCreatedEvent struct {
    eventstore.Envelope
    Data RestaurantCreated
}

func (e RestaurantCreatedEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleRestaurantCreated(ctx, e)
}

var _ kitevents.Event[Handler] = MenuRevisedEvent{}

type MenuRevisedEvent struct {
    eventstore.Envelope
    Data MenuRevised
}

func (e MenuRevisedEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleMenuRevised(ctx, e)
}

var _ kitevents.Event[Handler] = OrderCreatedEvent{}

type OrderCreatedEvent struct {
    eventstore.Envelope
    Data OrderCreated
}

func (e OrderCreatedEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleOrderCreated(ctx, e)
}

var _ kitevents.Event[Handler] = OrderAuthorizedEvent{}

type OrderAuthorizedEvent struct {
    eventstore.Envelope
    Data OrderAuthorized
}

func (e OrderAuthorizedEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleOrderAuthorized(ctx, e)
}

var _ kitevents.Event[Handler] = OrderRejectedEvent{}

type OrderRejectedEvent struct {
    eventstore.Envelope
    Data OrderRejected
}

func (e OrderRejectedEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleOrderRejected(ctx, e)
}

var _ kitevents.Event[Handler] = OrderCancelledEvent{}

type OrderCancelledEvent struct {
    eventstore.Envelope
    Data OrderCancelled
}

func (e OrderCancelledEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleOrderCancelled(ctx, e)
}

var _ kitevents.Event[Handler] = OrderRevisionProposedEvent{}

type OrderRevisionProposedEvent struct {
    eventstore.Envelope
    Data OrderRevisionProposed
}

func (e OrderRevisionProposedEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleOrderRevisionProposed(ctx, e)
}

var _ kitevents.Event[Handler] = OrderRevisedEvent{}

type OrderRevisedEvent struct {
    eventstore.Envelope
    Data OrderRevised
}

func (e OrderRevisedEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleOrderRevised(ctx, e)
}

var _ kitevents.Event[Handler] = CancelOrderSagaRequestedEvent{}

type CancelOrderSagaRequestedEvent struct {
    eventstore.Envelope
    Data CancelOrderSagaRequested
}

func (e CancelOrderSagaRequestedEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleCancelOrderSagaRequested(ctx, e)
}

var _ kitevents.Event[Handler] = ReviseOrderSagaRequestedEvent{}

type ReviseOrderSagaRequestedEvent struct {
    eventstore.Envelope
    Data ReviseOrderSagaRequested
}

func (e ReviseOrderSagaRequestedEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleReviseOrderSagaRequested(ctx, e)
}

var _ kitevents.Event[Handler] = TicketCreatedEvent{}

type TicketCreatedEvent struct {
    eventstore.Envelope
    Data TicketCreated
}

func (e TicketCreatedEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleTicketCreated(ctx, e)
}

var _ kitevents.Event[Handler] = TicketAcceptedEvent{}

type TicketAcceptedEvent struct {
    eventstore.Envelope
    Data TicketAccepted
}

func (e TicketAcceptedEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleTicketAccepted(ctx, e)
}

var _ kitevents.Event[Handler] = TicketCancelledEvent{}

type TicketCancelledEvent struct {
    eventstore.Envelope
    Data TicketCancelled
}

func (e TicketCancelledEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleTicketCancelled(ctx, e)
}

var _ kitevents.Event[Handler] = TicketRevisedEvent{}

type TicketRevisedEvent struct {
    eventstore.Envelope
    Data TicketRevised
}

func (e TicketRevisedEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleTicketRevised(ctx, e)
}

var _ kitevents.Event[Handler] = DeliveryScheduledEvent{}

type DeliveryScheduledEvent struct {
    eventstore.Envelope
    Data DeliveryScheduled
}

func (e DeliveryScheduledEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleDeliveryScheduled(ctx, e)
}

var _ kitevents.Event[Handler] = DeliveryCancelledEvent{}

type DeliveryCancelledEvent struct {
    eventstore.Envelope
    Data DeliveryCancelled
}

func (e DeliveryCancelledEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleDeliveryCancelled(ctx, e)
}

var _ kitevents.Event[Handler] = DeliveryPickedUpEvent{}

type DeliveryPickedUpEvent struct {
    eventstore.Envelope
    Data DeliveryPickedUp
}

func (e DeliveryPickedUpEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleDeliveryPickedUp(ctx, e)
}

var _ kitevents.Event[Handler] = DeliveryDeliveredEvent{}

type DeliveryDeliveredEvent struct {
    eventstore.Envelope
    Data DeliveryDelivered
}

func (e DeliveryDeliveredEvent) Accept(ctx context.Context, handler Handler) werrors.WError {
    return handler.HandleDeliveryDelivered(ctx, e)
}

var _ kitevents.Event[Handler] = Ignored{}

// Ignored carries envelopes no local handler is interested in. Accepting it
// is a no-op so the message gets acknowledged.
type Ignored struct {
    eventstore.Envelope
}

func (e Ignored) Accept(context.Context, Handler) werrors.WError {
    return nil
}
