package memory

import (
    "context"
    "fmt"
    "sort"
    "sync"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/projection"
)

var _ projection.ReplicaStore = (*ReplicaStore)(nil)

type ReplicaStore struct {
    mu       sync.RWMutex
    replicas map[key]projection.Replica
}

func NewReplicaStore() *ReplicaStore {
    return &ReplicaStore{replicas: map[key]projection.Replica{}}
}

func (s *ReplicaStore) Get(_ context.Context, replicaType string, id string) (projection.Replica, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    replica, ok := s.replicas[key{replicaType, id}]
    if !ok {
        return projection.Replica{}, fmt.Errorf("%s %s: %w", replicaType, id, shared.ErrNotFound)
    }
    return replica, nil
}

func (s *ReplicaStore) Find(_ context.Context, replicaType string, filter aggregates.Filter) ([]projection.Replica, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    var replicas []projection.Replica
    for k, replica := range s.replicas {
        if k.kind != replicaType {
            continue
        }
        matches, err := filter.Matches(replica.Data)
        if err != nil {
            return nil, err
        }
        if matches {
            replicas = append(replicas, replica)
        }
    }
    sort.Slice(replicas, func(i, j int) bool { return replicas[i].ID < replicas[j].ID })
    return replicas, nil
}

func (s *ReplicaStore) Put(_ context.Context, replica projection.Replica, previousSequence uint64, existed bool) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    k := key{replica.Type, replica.ID}
    stored, exists := s.replicas[k]
    if exists != existed || (exists && stored.LastAppliedSequence != previousSequence) {
        return fmt.Errorf("%s %s changed concurrently: %w", replica.Type, replica.ID, shared.ErrConcurrencyConflict)
    }
    s.replicas[k] = replica
    return nil
}
