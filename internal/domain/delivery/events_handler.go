package delivery

import (
    "context"
    "log/slog"

    "github.com/walletera/food-delivery/internal/domain/restaurant"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
    "github.com/walletera/food-delivery/internal/eventstore"
    "github.com/walletera/food-delivery/internal/projection"
    "github.com/walletera/food-delivery/pkg/logattr"

    "github.com/walletera/werrors"
)

// EventsHandler keeps the restaurant replicas and turns order and ticket
// events into delivery commands, each guarded by the inbox.
type EventsHandler struct {
    events.NopHandler
    service     *Service
    restaurants *restaurant.Replicas
    inbox       *projection.Inbox
    logger      *slog.Logger
}

func NewEventsHandler(service *Service, restaurants *restaurant.Replicas, inbox *projection.Inbox, logger *slog.Logger) *EventsHandler {
    return &EventsHandler{
        service:     service,
        restaurants: restaurants,
        inbox:       inbox,
        logger:      logger,
    }
}

func (h *EventsHandler) HandleRestaurantCreated(ctx context.Context, event events.RestaurantCreatedEvent) werrors.WError {
    return h.restaurants.HandleRestaurantCreated(ctx, event)
}

func (h *EventsHandler) HandleMenuRevised(ctx context.Context, event events.MenuRevisedEvent) werrors.WError {
    return h.restaurants.HandleMenuRevised(ctx, event)
}

func (h *EventsHandler) HandleOrderCreated(ctx context.Context, event events.OrderCreatedEvent) werrors.WError {
    return h.guard(ctx, event.Envelope, func(ctx context.Context) error {
        return h.service.CreateDelivery(
            ctx,
            event.Data.OrderID,
            event.Data.OrderDetails.RestaurantID,
            event.Data.DeliveryInformation.DeliveryAddress,
        )
    })
}

func (h *EventsHandler) HandleTicketAccepted(ctx context.Context, event events.TicketAcceptedEvent) werrors.WError {
    return h.guard(ctx, event.Envelope, func(ctx context.Context) error {
        return h.service.ScheduleDelivery(ctx, event.Data.TicketID, event.Data.ReadyBy.Time)
    })
}

func (h *EventsHandler) HandleTicketCancelled(ctx context.Context, event events.TicketCancelledEvent) werrors.WError {
    return h.guard(ctx, event.Envelope, func(ctx context.Context) error {
        return h.service.CancelDelivery(ctx, event.Data.TicketID)
    })
}

func (h *EventsHandler) guard(ctx context.Context, envelope eventstore.Envelope, command func(ctx context.Context) error) werrors.WError {
    err := h.inbox.Handle(ctx, envelope.AggregateType, envelope.AggregateID, envelope.SequenceNumber, command)
    if err != nil {
        h.logger.Error(
            "failed handling event",
            logattr.EventType(envelope.EventType),
            logattr.AggregateId(envelope.AggregateID),
            logattr.SequenceNumber(envelope.SequenceNumber),
            logattr.Error(err.Error()),
        )
        return shared.ToWError(err)
    }
    return nil
}
