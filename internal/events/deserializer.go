package events

import (
    "encoding/json"
    "fmt"
    "log/slog"

    "github.com/walletera/food-delivery/internal/eventstore"
    "github.com/walletera/food-delivery/pkg/logattr"

    kitevents "github.com/walletera/eventskit/events"
)

type factory func(envelope eventstore.Envelope) (kitevents.Event[Handler], error)

var factories = map[string]factory{
    eventstore.RoutingKey(AggregateRestaurant, RestaurantCreatedType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[RestaurantCreated](envelope)
        return RestaurantCreatedEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateRestaurant, MenuRevisedType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[MenuRevised](envelope)
        return MenuRevisedEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateOrder, OrderCreatedType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[OrderCreated](envelope)
        return OrderCreatedEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateOrder, OrderAuthorizedType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[OrderAuthorized](envelope)
        return OrderAuthorizedEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateOrder, OrderRejectedType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[OrderRejected](envelope)
        return OrderRejectedEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateOrder, OrderCancelledType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[OrderCancelled](envelope)
        return OrderCancelledEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateOrder, OrderRevisionProposedType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[OrderRevisionProposed](envelope)
        return OrderRevisionProposedEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateOrder, OrderRevisedType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[OrderRevised](envelope)
        return OrderRevisedEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateOrder, CancelOrderSagaRequestedType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[CancelOrderSagaRequested](envelope)
        return CancelOrderSagaRequestedEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateOrder, ReviseOrderSagaRequestedType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[ReviseOrderSagaRequested](envelope)
        return ReviseOrderSagaRequestedEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateTicket, TicketCreatedType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[TicketCreated](envelope)
        return TicketCreatedEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateTicket, TicketAcceptedType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[TicketAccepted](envelope)
        return TicketAcceptedEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateTicket, TicketCancelledType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[TicketCancelled](envelope)
        return TicketCancelledEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateTicket, TicketRevisedType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[TicketRevised](envelope)
        return TicketRevisedEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateDelivery, DeliveryScheduledType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[DeliveryScheduled](envelope)
        return DeliveryScheduledEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateDelivery, DeliveryCancelledType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[DeliveryCancelled](envelope)
        return DeliveryCancelledEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateDelivery, DeliveryPickedUpType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[DeliveryPickedUp](envelope)
        return DeliveryPickedUpEvent{Envelope: envelope, Data: data}, err
    },
    eventstore.RoutingKey(AggregateDelivery, DeliveryDeliveredType): func(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
        data, err := decode[DeliveryDelivered](envelope)
        return DeliveryDeliveredEvent{Envelope: envelope, Data: data}, err
    },
}

var _ kitevents.Deserializer[Handler] = (*Deserializer)(nil)

type Deserializer struct {
    logger *slog.Logger
}

func NewDeserializer(logger *slog.Logger) *Deserializer {
    return &Deserializer{logger: logger}
}

func (d *Deserializer) Deserialize(rawEvent []byte) (kitevents.Event[Handler], error) {
    var envelope eventstore.Envelope
    err := json.Unmarshal(rawEvent, &envelope)
    if err != nil {
        return nil, fmt.Errorf("failed unmarshalling envelope: %w", err)
    }
    event, err := Wrap(envelope)
    if err != nil {
        return nil, err
    }
    if _, ignored := event.(Ignored); ignored {
        d.logger.Debug(
            "ignoring event",
            logattr.AggregateType(envelope.AggregateType),
            logattr.EventType(envelope.EventType),
        )
    }
    return event, nil
}

// Wrap turns a stored envelope into its typed event. Envelopes of unknown
// types come back as Ignored.
func Wrap(envelope eventstore.Envelope) (kitevents.Event[Handler], error) {
    build, ok := factories[envelope.RoutingKey()]
    if !ok {
        return Ignored{Envelope: envelope}, nil
    }
    event, err := build(envelope)
    if err != nil {
        return nil, err
    }
    return event, nil
}

func decode[P any, PP interface {
    *P
    eventstore.DomainEvent
}](envelope eventstore.Envelope) (P, error) {
    var payload P
    err := envelope.DecodePayload(PP(&payload))
    return payload, err
}
