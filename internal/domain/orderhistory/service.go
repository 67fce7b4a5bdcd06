package orderhistory

import (
    "context"
    "errors"
    "fmt"
    "log/slog"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/delivery"
    "github.com/walletera/food-delivery/internal/domain/order"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
    "github.com/walletera/food-delivery/internal/eventstore"
    "github.com/walletera/food-delivery/internal/projection"
    "github.com/walletera/food-delivery/pkg/logattr"

    "github.com/walletera/werrors"
)

var ErrOrderHistoryNotFound = shared.NewError(shared.ErrNotFound, "order history not found")

// Service folds order and delivery events into the order history read model.
type Service struct {
    events.NopHandler
    orders     *projection.Applier[Order]
    deliveries *projection.Applier[Delivery]
    logger     *slog.Logger
}

func NewService(store projection.ReplicaStore, logger *slog.Logger) *Service {
    return &Service{
        orders:     projection.NewApplier[Order](store, OrderReplicaType, logger),
        deliveries: projection.NewApplier[Delivery](store, DeliveryReplicaType, logger),
        logger:     logger,
    }
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (View, error) {
    history, err := s.orders.FindByID(ctx, orderID)
    if errors.Is(err, shared.ErrNotFound) {
        return View{}, fmt.Errorf("%w: %s", ErrOrderHistoryNotFound, orderID)
    }
    if err != nil {
        return View{}, err
    }
    return s.view(ctx, history)
}

func (s *Service) ListOrders(ctx context.Context, consumerID string) ([]View, error) {
    histories, err := s.orders.FindBy(ctx, aggregates.Filter{"consumer_id": consumerID})
    if err != nil {
        return nil, err
    }
    views := make([]View, 0, len(histories))
    for _, history := range histories {
        view, err := s.view(ctx, history)
        if err != nil {
            return nil, err
        }
        views = append(views, view)
    }
    return views, nil
}

func (s *Service) view(ctx context.Context, history Order) (View, error) {
    view := View{Order: history}
    deliveryHistory, err := s.deliveries.FindByID(ctx, history.OrderID)
    if err == nil {
        view.Delivery = &deliveryHistory
        return view, nil
    }
    if errors.Is(err, shared.ErrNotFound) {
        return view, nil
    }
    return View{}, err
}

func (s *Service) HandleOrderCreated(ctx context.Context, event events.OrderCreatedEvent) werrors.WError {
    return s.applyOrder(ctx, event.Envelope, func(current Order) Order {
        createdAt := shared.NewTimestamp(event.Timestamp)
        current.ConsumerID = event.Data.OrderDetails.ConsumerID
        current.RestaurantID = event.Data.OrderDetails.RestaurantID
        current.LineItems = event.Data.OrderDetails.OrderLineItems
        current.OrderTotal = event.Data.OrderDetails.OrderTotal
        current.DeliveryInformation = event.Data.DeliveryInformation
        current.CreatedAt = &createdAt
        if current.State == "" {
            current.State = string(order.ApprovalPending)
        }
        return current
    })
}

func (s *Service) HandleOrderAuthorized(ctx context.Context, event events.OrderAuthorizedEvent) werrors.WError {
    return s.applyOrder(ctx, event.Envelope, withOrderState(order.Approved))
}

func (s *Service) HandleOrderRejected(ctx context.Context, event events.OrderRejectedEvent) werrors.WError {
    return s.applyOrder(ctx, event.Envelope, withOrderState(order.Rejected))
}

func (s *Service) HandleOrderCancelled(ctx context.Context, event events.OrderCancelledEvent) werrors.WError {
    return s.applyOrder(ctx, event.Envelope, withOrderState(order.Cancelled))
}

func (s *Service) HandleOrderRevised(ctx context.Context, event events.OrderRevisedEvent) werrors.WError {
    return s.applyOrder(ctx, event.Envelope, func(current Order) Order {
        current.LineItems = event.Data.OrderLineItems
        current.OrderTotal = event.Data.NewOrderTotal
        if event.Data.OrderRevision.DeliveryInformation != nil {
            current.DeliveryInformation = *event.Data.OrderRevision.DeliveryInformation
        }
        current.State = string(order.Approved)
        return current
    })
}

func (s *Service) HandleDeliveryPickedUp(ctx context.Context, event events.DeliveryPickedUpEvent) werrors.WError {
    return s.applyDelivery(ctx, event.Envelope, func(current Delivery) Delivery {
        pickedUpAt := event.Data.PickedUpAt
        current.State = string(delivery.PickedUp)
        current.CourierID = event.Data.CourierID
        current.PickedUpAt = &pickedUpAt
        return current
    })
}

func (s *Service) HandleDeliveryDelivered(ctx context.Context, event events.DeliveryDeliveredEvent) werrors.WError {
    return s.applyDelivery(ctx, event.Envelope, func(current Delivery) Delivery {
        deliveredAt := event.Data.DeliveredAt
        current.State = string(delivery.Delivered)
        current.CourierID = event.Data.CourierID
        current.DeliveredAt = &deliveredAt
        return current
    })
}

func withOrderState(state order.State) func(current Order) Order {
    return func(current Order) Order {
        current.State = string(state)
        return current
    }
}

func (s *Service) applyOrder(ctx context.Context, envelope eventstore.Envelope, fold func(current Order) Order) werrors.WError {
    _, err := s.orders.Apply(ctx, envelope.AggregateID, envelope.SequenceNumber, func(current Order, _ bool) (Order, error) {
        next := fold(current)
        next.OrderID = envelope.AggregateID
        next.UpdatedAt = shared.NewTimestamp(envelope.Timestamp)
        return next, nil
    })
    return s.result(envelope, err)
}

func (s *Service) applyDelivery(ctx context.Context, envelope eventstore.Envelope, fold func(current Delivery) Delivery) werrors.WError {
    _, err := s.deliveries.Apply(ctx, envelope.AggregateID, envelope.SequenceNumber, func(current Delivery, _ bool) (Delivery, error) {
        next := fold(current)
        next.DeliveryID = envelope.AggregateID
        return next, nil
    })
    return s.result(envelope, err)
}

func (s *Service) result(envelope eventstore.Envelope, err error) werrors.WError {
    if err != nil {
        s.logger.Error(
            "failed updating order history",
            logattr.EventType(envelope.EventType),
            logattr.OrderId(envelope.AggregateID),
            logattr.Error(err.Error()),
        )
        return shared.ToWError(err)
    }
    s.logger.Debug(
        "order history updated",
        logattr.EventType(envelope.EventType),
        logattr.OrderId(envelope.AggregateID),
    )
    return nil
}
