package aggregates

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"

    "github.com/walletera/food-delivery/internal/eventstore"
)

// Record is the stored form of an aggregate.
type Record struct {
    Type        string
    ID          string
    LockVersion uint64
    Data        json.RawMessage
}

// Filter selects records whose top-level snapshot fields equal the given
// values.
type Filter map[string]any

// Matches reports whether the snapshot data satisfies every condition.
func (f Filter) Matches(data json.RawMessage) (bool, error) {
    if len(f) == 0 {
        return true, nil
    }
    fields := map[string]json.RawMessage{}
    if err := json.Unmarshal(data, &fields); err != nil {
        return false, fmt.Errorf("snapshot is not a json object: %w", err)
    }
    for field, expected := range f {
        actual, ok := fields[field]
        if !ok {
            return false, nil
        }
        expectedJSON, err := json.Marshal(expected)
        if err != nil {
            return false, err
        }
        var compacted bytes.Buffer
        if err := json.Compact(&compacted, actual); err != nil {
            return false, err
        }
        if !bytes.Equal(compacted.Bytes(), expectedJSON) {
            return false, nil
        }
    }
    return true, nil
}

// RecordStore persists aggregate records together with the envelopes the
// mutation produced, in a single atomic write.
type RecordStore interface {
    // Get fails with shared.ErrNotFound when the record does not exist.
    Get(ctx context.Context, recordType string, id string) (Record, error)
    Find(ctx context.Context, recordType string, filter Filter) ([]Record, error)
    // Create fails with shared.ErrAlreadyExists when the id is taken.
    Create(ctx context.Context, record Record, envelopes []eventstore.Envelope) error
    // Update writes record only if the stored lock version is
    // record.LockVersion-1, failing with shared.ErrConcurrencyConflict
    // otherwise.
    Update(ctx context.Context, record Record, envelopes []eventstore.Envelope) error
}
