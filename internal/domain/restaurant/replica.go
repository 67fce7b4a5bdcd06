package restaurant

import (
    "context"
    "fmt"
    "log/slog"

    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
    "github.com/walletera/food-delivery/internal/projection"
    "github.com/walletera/food-delivery/pkg/logattr"

    "github.com/walletera/werrors"
)

// Replica is the copy of a restaurant kept by the services that need its
// menu or address.
type Replica struct {
    RestaurantID string            `json:"restaurant_id"`
    Name         string            `json:"name"`
    Address      shared.Address    `json:"address"`
    MenuItems    []shared.MenuItem `json:"menu_items"`
}

func (r Replica) FindMenuItem(menuID string) (shared.MenuItem, error) {
    for _, item := range r.MenuItems {
        if item.MenuID == menuID {
            return item, nil
        }
    }
    return shared.MenuItem{}, fmt.Errorf("%w: %s", ErrMenuItemNotFound, menuID)
}

// Replicas folds restaurant events into the replicas of one owning service.
type Replicas struct {
    applier *projection.Applier[Replica]
    logger  *slog.Logger
}

func NewReplicas(store projection.ReplicaStore, owner string, logger *slog.Logger) *Replicas {
    return &Replicas{
        applier: projection.NewApplier[Replica](store, owner+".restaurant", logger),
        logger:  logger,
    }
}

func (r *Replicas) HandleRestaurantCreated(ctx context.Context, event events.RestaurantCreatedEvent) werrors.WError {
    applied, err := r.applier.Apply(ctx, event.Data.RestaurantID, event.SequenceNumber, func(_ Replica, _ bool) (Replica, error) {
        return Replica{
            RestaurantID: event.Data.RestaurantID,
            Name:         event.Data.RestaurantName,
            Address:      event.Data.RestaurantAddress,
            MenuItems:    event.Data.MenuItems,
        }, nil
    })
    return r.result(event.Data.RestaurantID, applied, err)
}

func (r *Replicas) HandleMenuRevised(ctx context.Context, event events.MenuRevisedEvent) werrors.WError {
    applied, err := r.applier.Apply(ctx, event.Data.RestaurantID, event.SequenceNumber, func(current Replica, exists bool) (Replica, error) {
        if !exists {
            current.RestaurantID = event.Data.RestaurantID
        }
        current.MenuItems = event.Data.MenuItems
        return current, nil
    })
    return r.result(event.Data.RestaurantID, applied, err)
}

func (r *Replicas) FindByID(ctx context.Context, id string) (Replica, error) {
    replica, err := r.applier.FindByID(ctx, id)
    if err != nil {
        return Replica{}, notFound(id, err)
    }
    return replica, nil
}

func (r *Replicas) result(id string, applied bool, err error) werrors.WError {
    if err != nil {
        r.logger.Error("failed applying restaurant event", logattr.RestaurantId(id), logattr.Error(err.Error()))
        return shared.ToWError(err)
    }
    if applied {
        r.logger.Debug("restaurant replica updated", logattr.RestaurantId(id))
    }
    return nil
}
