package order

import (
    "context"
    "errors"
    "fmt"
    "log/slog"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/restaurant"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
    "github.com/walletera/food-delivery/internal/eventstore"
    "github.com/walletera/food-delivery/pkg/logattr"

    "github.com/google/uuid"
)

type LineItemRequest struct {
    MenuID   string `json:"menu_id"`
    Quantity int    `json:"quantity"`
}

type Service struct {
    repository   *aggregates.Repository[*Order]
    restaurants  *restaurant.Replicas
    orderMinimum shared.Money
    logger       *slog.Logger
}

type ServiceOpt func(s *Service)

func WithOrderMinimum(minimum shared.Money) ServiceOpt {
    return func(s *Service) { s.orderMinimum = minimum }
}

func NewService(store aggregates.RecordStore, recorder *eventstore.Recorder, restaurants *restaurant.Replicas, logger *slog.Logger, opts ...ServiceOpt) *Service {
    service := &Service{
        repository:  aggregates.NewRepository(store, recorder, New),
        restaurants: restaurants,
        logger:      logger,
    }
    for _, opt := range opts {
        opt(service)
    }
    return service
}

// CreateOrder prices the requested items from the local restaurant replica
// and records OrderCreated, which starts the create order saga.
func (s *Service) CreateOrder(ctx context.Context, consumerID string, restaurantID string, requests []LineItemRequest, deliveryInformation shared.DeliveryInformation) (*Order, error) {
    replica, err := s.restaurants.FindByID(ctx, restaurantID)
    if err != nil {
        return nil, err
    }
    lineItems := make([]shared.OrderLineItem, 0, len(requests))
    for _, request := range requests {
        menuItem, err := replica.FindMenuItem(request.MenuID)
        if err != nil {
            return nil, err
        }
        lineItems = append(lineItems, shared.OrderLineItem{
            MenuID:   menuItem.MenuID,
            Name:     menuItem.MenuName,
            Price:    menuItem.Price,
            Quantity: request.Quantity,
        })
    }
    order, created, err := Create(uuid.NewString(), consumerID, restaurantID, lineItems, deliveryInformation, s.orderMinimum)
    if err != nil {
        return nil, err
    }
    _, err = s.repository.Create(ctx, order, created)
    if err != nil {
        return nil, err
    }
    s.logger.Info(
        "order created",
        logattr.OrderId(order.ID),
        logattr.ConsumerId(consumerID),
        logattr.RestaurantId(restaurantID),
    )
    return order, nil
}

// RequestCancel records the request that starts the cancel order saga.
func (s *Service) RequestCancel(ctx context.Context, orderID string) (*Order, error) {
    return s.mutate(ctx, orderID, "cancel requested", func(order *Order) ([]eventstore.DomainEvent, error) {
        if err := order.requireState("cancel", Approved); err != nil {
            return nil, err
        }
        total, err := order.Total()
        if err != nil {
            return nil, err
        }
        return []eventstore.DomainEvent{order.cancelRequested(total)}, nil
    })
}

// RequestRevision validates revision and records the request that starts the
// revise order saga.
func (s *Service) RequestRevision(ctx context.Context, orderID string, revision shared.OrderRevision) (*Order, error) {
    return s.mutate(ctx, orderID, "revision requested", func(order *Order) ([]eventstore.DomainEvent, error) {
        if err := order.ValidateRevision(revision); err != nil {
            return nil, err
        }
        return []eventstore.DomainEvent{order.revisionRequested(revision)}, nil
    })
}

func (s *Service) Approve(ctx context.Context, orderID string) (*Order, error) {
    return s.mutate(ctx, orderID, "order approved", func(order *Order) ([]eventstore.DomainEvent, error) {
        event, err := order.Approve()
        return []eventstore.DomainEvent{event}, err
    })
}

func (s *Service) Reject(ctx context.Context, orderID string) (*Order, error) {
    return s.mutate(ctx, orderID, "order rejected", func(order *Order) ([]eventstore.DomainEvent, error) {
        event, err := order.Reject()
        return []eventstore.DomainEvent{event}, err
    })
}

func (s *Service) BeginCancel(ctx context.Context, orderID string) (*Order, error) {
    return s.mutate(ctx, orderID, "order cancel begun", func(order *Order) ([]eventstore.DomainEvent, error) {
        return nil, order.BeginCancel()
    })
}

func (s *Service) UndoBeginCancel(ctx context.Context, orderID string) (*Order, error) {
    return s.mutate(ctx, orderID, "order cancel undone", func(order *Order) ([]eventstore.DomainEvent, error) {
        return nil, order.UndoBeginCancel()
    })
}

func (s *Service) ConfirmCancel(ctx context.Context, orderID string) (*Order, error) {
    return s.mutate(ctx, orderID, "order cancelled", func(order *Order) ([]eventstore.DomainEvent, error) {
        event, err := order.ConfirmCancel()
        return []eventstore.DomainEvent{event}, err
    })
}

func (s *Service) BeginRevise(ctx context.Context, orderID string, revision shared.OrderRevision) (LineItemQuantityChange, error) {
    var change LineItemQuantityChange
    _, err := s.mutate(ctx, orderID, "order revision begun", func(order *Order) ([]eventstore.DomainEvent, error) {
        var (
            proposed []events.OrderRevisionProposed
            err      error
        )
        change, proposed, err = order.BeginRevise(revision)
        if err != nil {
            return nil, err
        }
        domainEvents := make([]eventstore.DomainEvent, 0, len(proposed))
        for _, event := range proposed {
            domainEvents = append(domainEvents, event)
        }
        return domainEvents, nil
    })
    if err != nil {
        return LineItemQuantityChange{}, err
    }
    return change, nil
}

func (s *Service) UndoBeginRevise(ctx context.Context, orderID string) (*Order, error) {
    return s.mutate(ctx, orderID, "order revision undone", func(order *Order) ([]eventstore.DomainEvent, error) {
        return nil, order.UndoBeginRevise()
    })
}

func (s *Service) ConfirmRevise(ctx context.Context, orderID string, revision shared.OrderRevision) (*Order, error) {
    return s.mutate(ctx, orderID, "order revised", func(order *Order) ([]eventstore.DomainEvent, error) {
        event, err := order.ConfirmRevise(revision)
        return []eventstore.DomainEvent{event}, err
    })
}

func (s *Service) FindByID(ctx context.Context, orderID string) (*Order, error) {
    order, err := s.repository.Find(ctx, orderID)
    if err != nil {
        return nil, notFound(orderID, err)
    }
    return order, nil
}

func (s *Service) mutate(ctx context.Context, orderID string, message string, fn func(order *Order) ([]eventstore.DomainEvent, error)) (*Order, error) {
    order, _, err := s.repository.Mutate(ctx, orderID, fn)
    if err != nil {
        return nil, notFound(orderID, err)
    }
    s.logger.Info(message, logattr.OrderId(orderID), logattr.State(string(order.State)))
    return order, nil
}

func notFound(orderID string, err error) error {
    if errors.Is(err, shared.ErrNotFound) && !errors.Is(err, ErrLineItemNotFound) {
        return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
    }
    return err
}
