package kitchen

import (
    "context"

    "github.com/walletera/food-delivery/internal/domain/restaurant"
    "github.com/walletera/food-delivery/internal/events"

    "github.com/walletera/werrors"
)

type EventsHandler struct {
    events.NopHandler
    restaurants *restaurant.Replicas
}

func NewEventsHandler(restaurants *restaurant.Replicas) *EventsHandler {
    return &EventsHandler{restaurants: restaurants}
}

func (h *EventsHandler) HandleRestaurantCreated(ctx context.Context, event events.RestaurantCreatedEvent) werrors.WError {
    return h.restaurants.HandleRestaurantCreated(ctx, event)
}

func (h *EventsHandler) HandleMenuRevised(ctx context.Context, event events.MenuRevisedEvent) werrors.WError {
    return h.restaurants.HandleMenuRevised(ctx, event)
}
