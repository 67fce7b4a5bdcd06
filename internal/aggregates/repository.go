package aggregates

import (
    "context"
    "errors"
    "fmt"

    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/eventstore"
)

const defaultMaxAttempts = 5

type Repository[T Aggregate] struct {
    store        RecordStore
    recorder     *eventstore.Recorder
    newAggregate func() T
    recordType   string
    maxAttempts  int
}

func NewRepository[T Aggregate](store RecordStore, recorder *eventstore.Recorder, newAggregate func() T) *Repository[T] {
    return &Repository[T]{
        store:        store,
        recorder:     recorder,
        newAggregate: newAggregate,
        recordType:   newAggregate().AggregateType(),
        maxAttempts:  defaultMaxAttempts,
    }
}

func (r *Repository[T]) RecordType() string {
    return r.recordType
}

func (r *Repository[T]) Find(ctx context.Context, id string) (T, error) {
    var zero T
    record, err := r.store.Get(ctx, r.recordType, id)
    if err != nil {
        return zero, err
    }
    return r.decode(record)
}

func (r *Repository[T]) FindBy(ctx context.Context, filter Filter) ([]T, error) {
    records, err := r.store.Find(ctx, r.recordType, filter)
    if err != nil {
        return nil, err
    }
    aggregates := make([]T, 0, len(records))
    for _, record := range records {
        aggregate, err := r.decode(record)
        if err != nil {
            return nil, err
        }
        aggregates = append(aggregates, aggregate)
    }
    return aggregates, nil
}

// Create stores a new aggregate. Sequence numbers taken by a concurrent
// void marker are replaced by fresh ones.
func (r *Repository[T]) Create(ctx context.Context, aggregate T, domainEvents ...eventstore.DomainEvent) ([]eventstore.Envelope, error) {
    var err error
    for attempt := 0; attempt < r.maxAttempts; attempt++ {
        var envelopes []eventstore.Envelope
        envelopes, err = r.create(ctx, aggregate, domainEvents)
        if err == nil {
            return envelopes, nil
        }
        if !errors.Is(err, eventstore.ErrSequenceTaken) {
            return nil, err
        }
    }
    return nil, fmt.Errorf("giving up after %d attempts: %w", r.maxAttempts, err)
}

func (r *Repository[T]) create(ctx context.Context, aggregate T, domainEvents []eventstore.DomainEvent) ([]eventstore.Envelope, error) {
    aggregate.SetVersion(1)
    record, envelopes, err := r.prepare(ctx, aggregate, domainEvents)
    if err != nil {
        aggregate.SetVersion(0)
        return nil, err
    }
    err = r.store.Create(ctx, record, envelopes)
    if err != nil {
        aggregate.SetVersion(0)
        r.recorder.Release(ctx, envelopes)
        return nil, fmt.Errorf("failed creating %s %s: %w", r.recordType, aggregate.AggregateID(), err)
    }
    return envelopes, nil
}

func (r *Repository[T]) Update(ctx context.Context, aggregate T, domainEvents ...eventstore.DomainEvent) ([]eventstore.Envelope, error) {
    previousVersion := aggregate.Version()
    aggregate.SetVersion(previousVersion + 1)
    record, envelopes, err := r.prepare(ctx, aggregate, domainEvents)
    if err != nil {
        aggregate.SetVersion(previousVersion)
        return nil, err
    }
    err = r.store.Update(ctx, record, envelopes)
    if err != nil {
        aggregate.SetVersion(previousVersion)
        r.recorder.Release(ctx, envelopes)
        return nil, fmt.Errorf("failed updating %s %s: %w", r.recordType, aggregate.AggregateID(), err)
    }
    return envelopes, nil
}

// Mutate loads the aggregate, applies fn and persists the result. When
// another writer got there first the whole cycle is repeated on fresh state,
// so fn must only depend on the aggregate it receives.
func (r *Repository[T]) Mutate(ctx context.Context, id string, fn func(aggregate T) ([]eventstore.DomainEvent, error)) (T, []eventstore.Envelope, error) {
    var zero T
    var lastErr error
    for attempt := 0; attempt < r.maxAttempts; attempt++ {
        aggregate, err := r.Find(ctx, id)
        if err != nil {
            return zero, nil, err
        }
        domainEvents, err := fn(aggregate)
        if err != nil {
            return zero, nil, err
        }
        envelopes, err := r.Update(ctx, aggregate, domainEvents...)
        if err == nil {
            return aggregate, envelopes, nil
        }
        if !errors.Is(err, shared.ErrConcurrencyConflict) {
            return zero, nil, err
        }
        lastErr = err
    }
    return zero, nil, fmt.Errorf("giving up after %d attempts: %w", r.maxAttempts, lastErr)
}

func (r *Repository[T]) prepare(ctx context.Context, aggregate T, domainEvents []eventstore.DomainEvent) (Record, []eventstore.Envelope, error) {
    data, err := aggregate.MarshalSnapshot()
    if err != nil {
        return Record{}, nil, fmt.Errorf("failed marshaling %s snapshot: %w", r.recordType, err)
    }
    envelopes, err := r.recorder.Wrap(ctx, r.recordType, aggregate.AggregateID(), domainEvents...)
    if err != nil {
        return Record{}, nil, err
    }
    return Record{
        Type:        r.recordType,
        ID:          aggregate.AggregateID(),
        LockVersion: aggregate.Version(),
        Data:        data,
    }, envelopes, nil
}

func (r *Repository[T]) decode(record Record) (T, error) {
    aggregate := r.newAggregate()
    err := aggregate.UnmarshalSnapshot(record.Data)
    if err != nil {
        var zero T
        return zero, fmt.Errorf("failed decoding %s %s: %w", r.recordType, record.ID, err)
    }
    aggregate.SetVersion(record.LockVersion)
    return aggregate, nil
}
