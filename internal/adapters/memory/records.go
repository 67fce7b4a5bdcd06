package memory

import (
    "context"
    "fmt"
    "sort"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/eventstore"
)

var _ aggregates.RecordStore = (*RecordStore)(nil)

type key struct {
    kind string
    id   string
}

// RecordStore keeps aggregate records next to an EventStore. Record writes
// and the envelopes they produce are committed under the event store lock.
type RecordStore struct {
    events  *EventStore
    records map[key]aggregates.Record
}

func NewRecordStore(events *EventStore) *RecordStore {
    return &RecordStore{
        events:  events,
        records: map[key]aggregates.Record{},
    }
}

func (s *RecordStore) Get(_ context.Context, recordType string, id string) (aggregates.Record, error) {
    s.events.mu.RLock()
    defer s.events.mu.RUnlock()
    record, ok := s.records[key{recordType, id}]
    if !ok {
        return aggregates.Record{}, fmt.Errorf("%s %s: %w", recordType, id, shared.ErrNotFound)
    }
    return record, nil
}

func (s *RecordStore) Find(_ context.Context, recordType string, filter aggregates.Filter) ([]aggregates.Record, error) {
    s.events.mu.RLock()
    defer s.events.mu.RUnlock()
    var records []aggregates.Record
    for k, record := range s.records {
        if k.kind != recordType {
            continue
        }
        matches, err := filter.Matches(record.Data)
        if err != nil {
            return nil, err
        }
        if matches {
            records = append(records, record)
        }
    }
    sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
    return records, nil
}

func (s *RecordStore) Create(_ context.Context, record aggregates.Record, envelopes []eventstore.Envelope) error {
    s.events.mu.Lock()
    defer s.events.mu.Unlock()
    k := key{record.Type, record.ID}
    if _, exists := s.records[k]; exists {
        return fmt.Errorf("%s %s: %w", record.Type, record.ID, shared.ErrAlreadyExists)
    }
    if err := s.events.checkAppend(envelopes); err != nil {
        return err
    }
    s.records[k] = record
    s.events.append(envelopes)
    return nil
}

func (s *RecordStore) Update(_ context.Context, record aggregates.Record, envelopes []eventstore.Envelope) error {
    s.events.mu.Lock()
    defer s.events.mu.Unlock()
    k := key{record.Type, record.ID}
    stored, exists := s.records[k]
    if !exists {
        return fmt.Errorf("%s %s: %w", record.Type, record.ID, shared.ErrNotFound)
    }
    if stored.LockVersion != record.LockVersion-1 {
        return fmt.Errorf(
            "%s %s is at version %d, update expected %d: %w",
            record.Type, record.ID, stored.LockVersion, record.LockVersion-1, shared.ErrConcurrencyConflict,
        )
    }
    if err := s.events.checkAppend(envelopes); err != nil {
        return err
    }
    s.records[k] = record
    s.events.append(envelopes)
    return nil
}
