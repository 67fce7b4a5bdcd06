package accounting

import (
    "context"
    "errors"
    "fmt"
    "log/slog"
    "time"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/eventstore"
    "github.com/walletera/food-delivery/pkg/logattr"
)

type Service struct {
    repository *aggregates.Repository[*Account]
    now        func() time.Time
    logger     *slog.Logger
}

type ServiceOpt func(s *Service)

func WithClock(now func() time.Time) ServiceOpt {
    return func(s *Service) { s.now = now }
}

func NewService(store aggregates.RecordStore, recorder *eventstore.Recorder, logger *slog.Logger, opts ...ServiceOpt) *Service {
    service := &Service{
        repository: aggregates.NewRepository(store, recorder, New),
        now:        time.Now,
        logger:     logger,
    }
    for _, opt := range opts {
        opt(service)
    }
    return service
}

func (s *Service) CreateAccount(ctx context.Context, consumerID string, card Card, creditLimit shared.Money) (*Account, error) {
    account, created := Create(consumerID, card, creditLimit)
    _, err := s.repository.Create(ctx, account, created)
    if err != nil {
        return nil, err
    }
    s.logger.Info("account created", logattr.AccountId(account.ID), logattr.ConsumerId(consumerID))
    return account, nil
}

func (s *Service) AuthorizeCard(ctx context.Context, consumerID string, orderID string, amount shared.Money) error {
    return s.mutate(ctx, consumerID, orderID, "card authorized", func(account *Account) ([]eventstore.DomainEvent, error) {
        authorized, err := account.Authorize(orderID, amount, s.now())
        if err != nil {
            return nil, err
        }
        domainEvents := make([]eventstore.DomainEvent, 0, len(authorized))
        for _, event := range authorized {
            domainEvents = append(domainEvents, event)
        }
        return domainEvents, nil
    })
}

func (s *Service) ReverseAuthorization(ctx context.Context, consumerID string, orderID string) error {
    return s.mutate(ctx, consumerID, orderID, "card authorization reversed", func(account *Account) ([]eventstore.DomainEvent, error) {
        event, err := account.ReverseAuthorization(orderID)
        return []eventstore.DomainEvent{event}, err
    })
}

func (s *Service) ReviseAuthorization(ctx context.Context, consumerID string, orderID string, amount shared.Money) error {
    return s.mutate(ctx, consumerID, orderID, "card authorization revised", func(account *Account) ([]eventstore.DomainEvent, error) {
        event, err := account.ReviseAuthorization(orderID, amount, s.now())
        return []eventstore.DomainEvent{event}, err
    })
}

func (s *Service) FindByID(ctx context.Context, accountID string) (*Account, error) {
    account, err := s.repository.Find(ctx, accountID)
    if err != nil {
        return nil, notFound(accountID, err)
    }
    return account, nil
}

func (s *Service) mutate(ctx context.Context, accountID string, orderID string, message string, fn func(account *Account) ([]eventstore.DomainEvent, error)) error {
    _, _, err := s.repository.Mutate(ctx, accountID, fn)
    if err != nil {
        s.logger.Warn(
            "card operation failed",
            logattr.AccountId(accountID),
            logattr.OrderId(orderID),
            logattr.Error(err.Error()),
        )
        return notFound(accountID, err)
    }
    s.logger.Info(message, logattr.AccountId(accountID), logattr.OrderId(orderID))
    return nil
}

func notFound(accountID string, err error) error {
    if errors.Is(err, shared.ErrNotFound) && !errors.Is(err, ErrAuthorizationNotFound) {
        return fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
    }
    return err
}
