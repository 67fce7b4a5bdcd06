package projection

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/pkg/logattr"
)

const maxApplyAttempts = 5

// Applier folds envelopes of one remote stream into replicas of type T.
type Applier[T any] struct {
    store       ReplicaStore
    replicaType string
    logger      *slog.Logger
}

func NewApplier[T any](store ReplicaStore, replicaType string, logger *slog.Logger) *Applier[T] {
    return &Applier[T]{
        store:       store,
        replicaType: replicaType,
        logger:      logger.With(logattr.ReplicaType(replicaType)),
    }
}

// Apply folds the event with the given sequence number into replica id.
// Sequence numbers at or below the last applied one are discarded and
// Apply reports applied=false.
func (a *Applier[T]) Apply(ctx context.Context, id string, sequenceNumber uint64, fold func(current T, exists bool) (T, error)) (bool, error) {
    var lastErr error
    for attempt := 0; attempt < maxApplyAttempts; attempt++ {
        current, previousSequence, exists, err := a.load(ctx, id)
        if err != nil {
            return false, err
        }
        if exists && sequenceNumber <= previousSequence {
            a.logger.Debug(
                "stale event discarded",
                logattr.AggregateId(id),
                logattr.SequenceNumber(sequenceNumber),
            )
            return false, nil
        }
        next, err := fold(current, exists)
        if err != nil {
            return false, err
        }
        data, err := json.Marshal(next)
        if err != nil {
            return false, fmt.Errorf("failed marshaling %s replica: %w", a.replicaType, err)
        }
        err = a.store.Put(ctx, Replica{
            Type:                a.replicaType,
            ID:                  id,
            LastAppliedSequence: sequenceNumber,
            Data:                data,
        }, previousSequence, exists)
        if err == nil {
            return true, nil
        }
        if !errors.Is(err, shared.ErrConcurrencyConflict) {
            return false, err
        }
        lastErr = err
    }
    return false, fmt.Errorf("giving up applying to %s %s: %w", a.replicaType, id, lastErr)
}

// FindByID returns the replica or an error wrapping shared.ErrNotFound.
func (a *Applier[T]) FindByID(ctx context.Context, id string) (T, error) {
    var zero T
    current, _, exists, err := a.load(ctx, id)
    if err != nil {
        return zero, err
    }
    if !exists {
        return zero, fmt.Errorf("%s %s: %w", a.replicaType, id, shared.ErrNotFound)
    }
    return current, nil
}

func (a *Applier[T]) FindBy(ctx context.Context, filter aggregates.Filter) ([]T, error) {
    replicas, err := a.store.Find(ctx, a.replicaType, filter)
    if err != nil {
        return nil, err
    }
    values := make([]T, 0, len(replicas))
    for _, replica := range replicas {
        var value T
        if err := json.Unmarshal(replica.Data, &value); err != nil {
            return nil, fmt.Errorf("failed decoding %s replica %s: %w", a.replicaType, replica.ID, err)
        }
        values = append(values, value)
    }
    return values, nil
}

func (a *Applier[T]) load(ctx context.Context, id string) (T, uint64, bool, error) {
    var current T
    replica, err := a.store.Get(ctx, a.replicaType, id)
    if errors.Is(err, shared.ErrNotFound) {
        return current, 0, false, nil
    }
    if err != nil {
        return current, 0, false, err
    }
    if err := json.Unmarshal(replica.Data, &current); err != nil {
        return current, 0, false, fmt.Errorf("failed decoding %s replica %s: %w", a.replicaType, id, err)
    }
    return current, replica.LastAppliedSequence, true, nil
}
