package delivery

import (
    "context"
    "errors"
    "fmt"
    "log/slog"
    "time"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/restaurant"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/eventstore"
    "github.com/walletera/food-delivery/pkg/logattr"
)

type Service struct {
    deliveries  *aggregates.Repository[*Delivery]
    couriers    *aggregates.Repository[*Courier]
    restaurants *restaurant.Replicas
    chooser     CourierChooser
    now         func() time.Time
    logger      *slog.Logger
}

type ServiceOpt func(s *Service)

func WithClock(now func() time.Time) ServiceOpt {
    return func(s *Service) { s.now = now }
}

func WithCourierChooser(chooser CourierChooser) ServiceOpt {
    return func(s *Service) { s.chooser = chooser }
}

func NewService(store aggregates.RecordStore, recorder *eventstore.Recorder, restaurants *restaurant.Replicas, logger *slog.Logger, opts ...ServiceOpt) *Service {
    service := &Service{
        deliveries:  aggregates.NewRepository(store, recorder, New),
        couriers:    aggregates.NewRepository(store, recorder, NewCourier),
        restaurants: restaurants,
        chooser:     NewRandomChooser(time.Now().UnixNano()),
        now:         time.Now,
        logger:      logger,
    }
    for _, opt := range opts {
        opt(service)
    }
    return service
}

// CreateDelivery opens the PENDING delivery of an order, picking the pickup
// address from the restaurant replica. Creating it twice is a no-op.
func (s *Service) CreateDelivery(ctx context.Context, orderID string, restaurantID string, deliveryAddress shared.Address) error {
    replica, err := s.restaurants.FindByID(ctx, restaurantID)
    if errors.Is(err, shared.ErrNotFound) {
        return fmt.Errorf("%w: restaurant %s not replicated yet", shared.ErrUnavailable, restaurantID)
    }
    if err != nil {
        return err
    }
    delivery, created := Create(orderID, restaurantID, replica.Address, deliveryAddress)
    _, err = s.deliveries.Create(ctx, delivery, created)
    if errors.Is(err, shared.ErrAlreadyExists) {
        s.logger.Debug("delivery already exists", logattr.DeliveryId(orderID))
        return nil
    }
    if err != nil {
        return err
    }
    s.logger.Info("delivery created", logattr.DeliveryId(orderID), logattr.RestaurantId(restaurantID))
    return nil
}

// ScheduleDelivery assigns a courier and plans its pickup at readyBy. A
// delivery that is already scheduled only gets its courier plan completed.
func (s *Service) ScheduleDelivery(ctx context.Context, deliveryID string, readyBy time.Time) error {
    delivery, err := s.findForEvent(ctx, deliveryID)
    if err != nil {
        return err
    }
    if delivery.State == Pending {
        available, err := s.couriers.FindBy(ctx, aggregates.Filter{"available": true})
        if err != nil {
            return err
        }
        courier, err := s.chooser.Choose(available)
        if err != nil {
            s.logger.Warn("delivery not scheduled", logattr.DeliveryId(deliveryID), logattr.Error(err.Error()))
            return err
        }
        delivery, _, err = s.deliveries.Mutate(ctx, deliveryID, func(delivery *Delivery) ([]eventstore.DomainEvent, error) {
            event, err := delivery.Schedule(readyBy, courier.ID)
            return []eventstore.DomainEvent{event}, err
        })
        if err != nil {
            return err
        }
    }
    if delivery.State != Scheduled {
        return shared.UnsupportedTransition("delivery", "schedule", string(delivery.State))
    }
    pickupTime := *delivery.ReadyBy
    _, _, err = s.couriers.Mutate(ctx, delivery.AssignedCourier, func(courier *Courier) ([]eventstore.DomainEvent, error) {
        courier.AddDelivery(deliveryID, delivery.PickupAddress, pickupTime, delivery.DeliveryAddress, pickupTime.Add(DropoffDelay))
        return nil, nil
    })
    if err != nil {
        return courierNotFound(delivery.AssignedCourier, err)
    }
    s.logger.Info("delivery scheduled", logattr.DeliveryId(deliveryID), logattr.CourierId(delivery.AssignedCourier))
    return nil
}

// CancelDelivery cancels the delivery and drops its actions from the plan of
// the assigned courier.
func (s *Service) CancelDelivery(ctx context.Context, deliveryID string) error {
    delivery, err := s.findForEvent(ctx, deliveryID)
    if err != nil {
        return err
    }
    if delivery.State != Cancelled {
        delivery, _, err = s.deliveries.Mutate(ctx, deliveryID, func(delivery *Delivery) ([]eventstore.DomainEvent, error) {
            event, err := delivery.Cancel()
            return []eventstore.DomainEvent{event}, err
        })
        if err != nil {
            return err
        }
    }
    if delivery.AssignedCourier != "" {
        _, _, err = s.couriers.Mutate(ctx, delivery.AssignedCourier, func(courier *Courier) ([]eventstore.DomainEvent, error) {
            courier.RemoveDelivery(deliveryID)
            return nil, nil
        })
        if err != nil {
            return courierNotFound(delivery.AssignedCourier, err)
        }
    }
    s.logger.Info("delivery cancelled", logattr.DeliveryId(deliveryID))
    return nil
}

func (s *Service) UpdateCourierAvailability(ctx context.Context, courierID string, available bool) (*Courier, error) {
    _, err := s.couriers.Find(ctx, courierID)
    if errors.Is(err, shared.ErrNotFound) {
        courier := CreateCourier(courierID, available)
        _, err = s.couriers.Create(ctx, courier)
        if err == nil {
            s.logger.Info("courier created", logattr.CourierId(courierID))
            return courier, nil
        }
        if !errors.Is(err, shared.ErrAlreadyExists) {
            return nil, err
        }
    } else if err != nil {
        return nil, err
    }
    courier, _, err := s.couriers.Mutate(ctx, courierID, func(courier *Courier) ([]eventstore.DomainEvent, error) {
        courier.Available = available
        return nil, nil
    })
    if err != nil {
        return nil, err
    }
    s.logger.Info("courier availability updated", logattr.CourierId(courierID))
    return courier, nil
}

func (s *Service) PickUp(ctx context.Context, deliveryID string) (*Delivery, error) {
    delivery, _, err := s.deliveries.Mutate(ctx, deliveryID, func(delivery *Delivery) ([]eventstore.DomainEvent, error) {
        event, err := delivery.PickUp(s.now())
        return []eventstore.DomainEvent{event}, err
    })
    if err != nil {
        return nil, deliveryNotFound(deliveryID, err)
    }
    err = s.completeAction(ctx, delivery, ActionPickup, ActionPickedUp, *delivery.PickupTime)
    if err != nil {
        return nil, err
    }
    s.logger.Info("delivery picked up", logattr.DeliveryId(deliveryID), logattr.CourierId(delivery.AssignedCourier))
    return delivery, nil
}

func (s *Service) Deliver(ctx context.Context, deliveryID string) (*Delivery, error) {
    delivery, _, err := s.deliveries.Mutate(ctx, deliveryID, func(delivery *Delivery) ([]eventstore.DomainEvent, error) {
        event, err := delivery.Deliver(s.now())
        return []eventstore.DomainEvent{event}, err
    })
    if err != nil {
        return nil, deliveryNotFound(deliveryID, err)
    }
    err = s.completeAction(ctx, delivery, ActionDropoff, ActionDelivered, *delivery.DeliveryTime)
    if err != nil {
        return nil, err
    }
    s.logger.Info("delivery delivered", logattr.DeliveryId(deliveryID), logattr.CourierId(delivery.AssignedCourier))
    return delivery, nil
}

func (s *Service) FindDelivery(ctx context.Context, deliveryID string) (*Delivery, error) {
    delivery, err := s.deliveries.Find(ctx, deliveryID)
    if err != nil {
        return nil, deliveryNotFound(deliveryID, err)
    }
    return delivery, nil
}

func (s *Service) FindCourier(ctx context.Context, courierID string) (*Courier, error) {
    courier, err := s.couriers.Find(ctx, courierID)
    if err != nil {
        return nil, courierNotFound(courierID, err)
    }
    return courier, nil
}

func (s *Service) completeAction(ctx context.Context, delivery *Delivery, planned ActionType, done ActionType, at time.Time) error {
    _, _, err := s.couriers.Mutate(ctx, delivery.AssignedCourier, func(courier *Courier) ([]eventstore.DomainEvent, error) {
        courier.Complete(delivery.ID, planned, done, at)
        return nil, nil
    })
    return courierNotFound(delivery.AssignedCourier, err)
}

// findForEvent loads a delivery referenced by an event of another stream.
// The delivery may not exist yet because streams are not ordered against
// each other, so a missing one is reported as retryable.
func (s *Service) findForEvent(ctx context.Context, deliveryID string) (*Delivery, error) {
    delivery, err := s.deliveries.Find(ctx, deliveryID)
    if errors.Is(err, shared.ErrNotFound) {
        return nil, fmt.Errorf("%w: delivery %s not created yet", shared.ErrUnavailable, deliveryID)
    }
    return delivery, err
}

func deliveryNotFound(deliveryID string, err error) error {
    if errors.Is(err, shared.ErrNotFound) {
        return fmt.Errorf("%w: %s", ErrDeliveryNotFound, deliveryID)
    }
    return err
}

func courierNotFound(courierID string, err error) error {
    if errors.Is(err, shared.ErrNotFound) {
        return fmt.Errorf("%w: %s", ErrCourierNotFound, courierID)
    }
    return err
}
