package events

import (
    "context"

    "github.com/walletera/werrors"
)

// Handler is implemented by every service that consumes envelopes from the
// broker. Embed NopHandler to react to a subset of the event types.
type Handler interface {
    HandleRestaurantCreated(ctx context.Context, event RestaurantCreatedEvent) werrors.WError
    HandleMenuRevised(ctx context.Context, event MenuRevisedEvent) werrors.WError
    HandleOrderCreated(ctx context.Context, event OrderCreatedEvent) werrors.WError
    HandleOrderAuthorized(ctx context.Context, event OrderAuthorizedEvent) werrors.WError
    HandleOrderRejected(ctx context.Context, event OrderRejectedEvent) werrors.WError
    HandleOrderCancelled(ctx context.Context, event OrderCancelledEvent) werrors.WError
    HandleOrderRevisionProposed(ctx context.Context, event OrderRevisionProposedEvent) werrors.WError
    HandleOrderRevised(ctx context.Context, event OrderRevisedEvent) werrors.WError
    HandleCancelOrderSagaRequested(ctx context.Context, event CancelOrderSagaRequestedEvent) werrors.WError
    HandleReviseOrderSagaRequested(ctx context.Context, event ReviseOrderSagaRequestedEvent) werrors.WError
    HandleTicketCreated(ctx context.Context, event TicketCreatedEvent) werrors.WError
    HandleTicketAccepted(ctx context.Context, event TicketAcceptedEvent) werrors.WError
    HandleTicketCancelled(ctx context.Context, event TicketCancelledEvent) werrors.WError
    HandleTicketRevised(ctx context.Context, event TicketRevisedEvent) werrors.WError
    HandleDeliveryScheduled(ctx context.Context, event DeliveryScheduledEvent) werrors.WError
    HandleDeliveryCancelled(ctx context.Context, event DeliveryCancelledEvent) werrors.WError
    HandleDeliveryPickedUp(ctx context.Context, event DeliveryPickedUpEvent) werrors.WError
    HandleDeliveryDelivered(ctx context.Context, event DeliveryDeliveredEvent) werrors.WError
}

var _ Handler = NopHandler{}

type NopHandler struct{}

func (NopHandler) HandleRestaurantCreated(context.Context, RestaurantCreatedEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleMenuRevised(context.Context, MenuRevisedEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleOrderCreated(context.Context, OrderCreatedEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleOrderAuthorized(context.Context, OrderAuthorizedEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleOrderRejected(context.Context, OrderRejectedEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleOrderCancelled(context.Context, OrderCancelledEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleOrderRevisionProposed(context.Context, OrderRevisionProposedEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleOrderRevised(context.Context, OrderRevisedEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleCancelOrderSagaRequested(context.Context, CancelOrderSagaRequestedEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleReviseOrderSagaRequested(context.Context, ReviseOrderSagaRequestedEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleTicketCreated(context.Context, TicketCreatedEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleTicketAccepted(context.Context, TicketAcceptedEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleTicketCancelled(context.Context, TicketCancelledEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleTicketRevised(context.Context, TicketRevisedEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleDeliveryScheduled(context.Context, DeliveryScheduledEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleDeliveryCancelled(context.Context, DeliveryCancelledEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleDeliveryPickedUp(context.Context, DeliveryPickedUpEvent) werrors.WError {
    return nil
}

func (NopHandler) HandleDeliveryDelivered(context.Context, DeliveryDeliveredEvent) werrors.WError {
    return nil
}
