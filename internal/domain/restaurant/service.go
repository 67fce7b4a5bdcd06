package restaurant

import (
    "context"
    "errors"
    "fmt"
    "log/slog"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/eventstore"
    "github.com/walletera/food-delivery/pkg/logattr"

    "github.com/google/uuid"
)

type Service struct {
    repository *aggregates.Repository[*Restaurant]
    logger     *slog.Logger
}

func NewService(store aggregates.RecordStore, recorder *eventstore.Recorder, logger *slog.Logger) *Service {
    return &Service{
        repository: aggregates.NewRepository(store, recorder, New),
        logger:     logger,
    }
}

func (s *Service) CreateRestaurant(ctx context.Context, name string, address shared.Address, menuItems []shared.MenuItem) (*Restaurant, error) {
    restaurant, created, err := Create(uuid.NewString(), name, address, menuItems)
    if err != nil {
        return nil, err
    }
    _, err = s.repository.Create(ctx, restaurant, created)
    if err != nil {
        return nil, err
    }
    s.logger.Info("restaurant created", logattr.RestaurantId(restaurant.ID))
    return restaurant, nil
}

func (s *Service) ReviseMenu(ctx context.Context, id string, menuItems []shared.MenuItem) (*Restaurant, error) {
    restaurant, _, err := s.repository.Mutate(ctx, id, func(restaurant *Restaurant) ([]eventstore.DomainEvent, error) {
        revised, err := restaurant.ReviseMenu(menuItems)
        if err != nil {
            return nil, err
        }
        return []eventstore.DomainEvent{revised}, nil
    })
    if err != nil {
        return nil, notFound(id, err)
    }
    s.logger.Info("menu revised", logattr.RestaurantId(id))
    return restaurant, nil
}

func (s *Service) FindByID(ctx context.Context, id string) (*Restaurant, error) {
    restaurant, err := s.repository.Find(ctx, id)
    if err != nil {
        return nil, notFound(id, err)
    }
    return restaurant, nil
}

func notFound(id string, err error) error {
    if errors.Is(err, shared.ErrNotFound) {
        return fmt.Errorf("%w: %s", ErrRestaurantNotFound, id)
    }
    return err
}
