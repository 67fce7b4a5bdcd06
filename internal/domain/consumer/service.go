package consumer

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
    repository *aggregates.Repository[*Consumer]
    logger     *slog.Logger
}

func NewService(store aggregates.RecordStore, recorder *eventstore.Recorder, logger *slog.Logger) *Service {
    return &Service{
        repository: aggregates.NewRepository(store, recorder, New),
        logger:     logger,
    }
}

func (s *Service) CreateConsumer(ctx context.Context, name shared.PersonName, orderLimit shared.Money) (*Consumer, error) {
    consumer, created := Create(uuid.NewString(), name, orderLimit)
    _, err := s.repository.Create(ctx, consumer, created)
    if err != nil {
        return nil, err
    }
    s.logger.Info("consumer created", logattr.ConsumerId(consumer.ID))
    return consumer, nil
}

func (s *Service) ValidateOrderForConsumer(ctx context.Context, consumerID string, orderTotal shared.Money) error {
    consumer, err := s.FindByID(ctx, consumerID)
    if err != nil {
        return err
    }
    err = consumer.ValidateOrder(orderTotal)
    if err != nil {
        s.logger.Warn("consumer verification failed", logattr.ConsumerId(consumerID), logattr.Error(err.Error()))
        return err
    }
    return nil
}

func (s *Service) FindByID(ctx context.Context, consumerID string) (*Consumer, error) {
    consumer, err := s.repository.Find(ctx, consumerID)
    if errors.Is(err, shared.ErrNotFound) {
        return nil, fmt.Errorf("%w: %s", ErrConsumerNotFound, consumerID)
    }
    if err != nil {
        return nil, err
    }
    return consumer, nil
}
