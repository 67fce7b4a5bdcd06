package projection

import (
    "context"
    "encoding/json"

    "github.com/walletera/food-delivery/internal/aggregates"
)

// Replica is a local copy of a remote aggregate together with the sequence
// number of the last envelope folded into it.
type Replica struct {
    Type                string
    ID                  string
    LastAppliedSequence uint64
    Data                json.RawMessage
}

type ReplicaStore interface {
    // Get fails with shared.ErrNotFound when the replica does not exist.
    Get(ctx context.Context, replicaType string, id string) (Replica, error)
    Find(ctx context.Context, replicaType string, filter aggregates.Filter) ([]Replica, error)
    // Put inserts replica when it did not exist before, or replaces it only
    // if the stored last applied sequence still equals previousSequence.
    // Losing either race fails with shared.ErrConcurrencyConflict.
    Put(ctx context.Context, replica Replica, previousSequence uint64, existed bool) error
}
