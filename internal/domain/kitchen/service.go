package kitchen

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
    repository  *aggregates.Repository[*Ticket]
    restaurants *restaurant.Replicas
    now         func() time.Time
    logger      *slog.Logger
}

type ServiceOpt func(s *Service)

func WithClock(now func() time.Time) ServiceOpt {
    return func(s *Service) { s.now = now }
}

func NewService(store aggregates.RecordStore, recorder *eventstore.Recorder, restaurants *restaurant.Replicas, logger *slog.Logger, opts ...ServiceOpt) *Service {
    service := &Service{
        repository:  aggregates.NewRepository(store, recorder, New),
        restaurants: restaurants,
        now:         time.Now,
        logger:      logger,
    }
    for _, opt := range opts {
        opt(service)
    }
    return service
}

// CreateTicket opens a CREATE_PENDING ticket for the order and returns its
// id. A ticket already waiting for confirmation for the same order is
// returned as is.
func (s *Service) CreateTicket(ctx context.Context, orderID string, restaurantID string, lineItems []shared.TicketLineItem) (string, error) {
    _, err := s.restaurants.FindByID(ctx, restaurantID)
    if errors.Is(err, shared.ErrNotFound) {
        return "", fmt.Errorf("%w: restaurant %s not replicated yet", shared.ErrUnavailable, restaurantID)
    }
    if err != nil {
        return "", err
    }
    ticket := Create(orderID, restaurantID, lineItems)
    _, err = s.repository.Create(ctx, ticket)
    if errors.Is(err, shared.ErrAlreadyExists) {
        existing, findErr := s.repository.Find(ctx, orderID)
        if findErr != nil {
            return "", findErr
        }
        if existing.State != CreatePending || existing.RestaurantID != restaurantID {
            return "", shared.UnsupportedTransition("ticket", "create", string(existing.State))
        }
        return existing.ID, nil
    }
    if err != nil {
        return "", err
    }
    s.logger.Info("ticket created", logattr.TicketId(orderID), logattr.RestaurantId(restaurantID))
    return ticket.ID, nil
}

func (s *Service) ConfirmCreate(ctx context.Context, ticketID string) (*Ticket, error) {
    return s.mutate(ctx, ticketID, "ticket create confirmed", func(ticket *Ticket) ([]eventstore.DomainEvent, error) {
        event, err := ticket.ConfirmCreate()
        return []eventstore.DomainEvent{event}, err
    })
}

func (s *Service) CancelCreate(ctx context.Context, ticketID string) (*Ticket, error) {
    return s.mutate(ctx, ticketID, "ticket create cancelled", func(ticket *Ticket) ([]eventstore.DomainEvent, error) {
        event, err := ticket.CancelCreate()
        return []eventstore.DomainEvent{event}, err
    })
}

func (s *Service) BeginCancel(ctx context.Context, ticketID string) (*Ticket, error) {
    return s.mutate(ctx, ticketID, "ticket cancel begun", func(ticket *Ticket) ([]eventstore.DomainEvent, error) {
        return nil, ticket.BeginCancel()
    })
}

func (s *Service) UndoBeginCancel(ctx context.Context, ticketID string) (*Ticket, error) {
    return s.mutate(ctx, ticketID, "ticket cancel undone", func(ticket *Ticket) ([]eventstore.DomainEvent, error) {
        return nil, ticket.UndoBeginCancel()
    })
}

func (s *Service) ConfirmCancel(ctx context.Context, ticketID string) (*Ticket, error) {
    return s.mutate(ctx, ticketID, "ticket cancelled", func(ticket *Ticket) ([]eventstore.DomainEvent, error) {
        event, err := ticket.ConfirmCancel()
        return []eventstore.DomainEvent{event}, err
    })
}

func (s *Service) BeginRevise(ctx context.Context, ticketID string, revisedQuantities map[string]int) (*Ticket, error) {
    return s.mutate(ctx, ticketID, "ticket revision begun", func(ticket *Ticket) ([]eventstore.DomainEvent, error) {
        return nil, ticket.BeginRevise(revisedQuantities)
    })
}

func (s *Service) UndoBeginRevise(ctx context.Context, ticketID string) (*Ticket, error) {
    return s.mutate(ctx, ticketID, "ticket revision undone", func(ticket *Ticket) ([]eventstore.DomainEvent, error) {
        return nil, ticket.UndoBeginRevise()
    })
}

func (s *Service) ConfirmRevise(ctx context.Context, ticketID string, revisedQuantities map[string]int) (*Ticket, error) {
    return s.mutate(ctx, ticketID, "ticket revised", func(ticket *Ticket) ([]eventstore.DomainEvent, error) {
        event, err := ticket.ConfirmRevise(revisedQuantities)
        return []eventstore.DomainEvent{event}, err
    })
}

func (s *Service) Accept(ctx context.Context, ticketID string, readyBy time.Time) (*Ticket, error) {
    return s.mutate(ctx, ticketID, "ticket accepted", func(ticket *Ticket) ([]eventstore.DomainEvent, error) {
        event, err := ticket.Accept(readyBy, s.now())
        return []eventstore.DomainEvent{event}, err
    })
}

func (s *Service) FindByID(ctx context.Context, ticketID string) (*Ticket, error) {
    ticket, err := s.repository.Find(ctx, ticketID)
    if err != nil {
        return nil, notFound(ticketID, err)
    }
    return ticket, nil
}

func (s *Service) mutate(ctx context.Context, ticketID string, message string, fn func(ticket *Ticket) ([]eventstore.DomainEvent, error)) (*Ticket, error) {
    ticket, _, err := s.repository.Mutate(ctx, ticketID, fn)
    if err != nil {
        return nil, notFound(ticketID, err)
    }
    s.logger.Info(message, logattr.TicketId(ticketID), logattr.State(string(ticket.State)))
    return ticket, nil
}

func notFound(ticketID string, err error) error {
    if errors.Is(err, shared.ErrNotFound) && !errors.Is(err, ErrUnknownLineItem) {
        return fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
    }
    return err
}
