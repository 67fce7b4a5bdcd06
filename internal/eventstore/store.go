package eventstore

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/walletera/food-delivery/internal/domain/shared"
)

// VoidEventType marks a sequence number that will never carry an event,
// because the write that drew it failed or the relay gave up waiting for it.
const VoidEventType = "SequenceVoided"

// ErrSequenceTaken is returned when an appended envelope reuses a sequence
// number already present in its stream, as an event or as a void marker.
// The writer has to draw new numbers and try again.
var ErrSequenceTaken = fmt.Errorf("sequence number taken: %w: %w", shared.ErrAlreadyExists, shared.ErrConcurrencyConflict)

// Sequencer hands out a strictly increasing number per stream key. Two
// callers never observe the same value for one key.
type Sequencer interface {
    Next(ctx context.Context, streamKey string) (uint64, error)
}

// Store is an append-only log of envelopes. Envelopes are never updated or
// deleted; appending an already used (aggregate type, sequence number) pair
// fails with ErrSequenceTaken.
type Store interface {
    Append(ctx context.Context, envelopes ...Envelope) error
    // ReadStream returns up to limit envelopes of one aggregate type with a
    // sequence number greater than afterSequence, in sequence order.
    ReadStream(ctx context.Context, aggregateType string, afterSequence uint64, limit int) ([]Envelope, error)
    // ReadAggregate returns every envelope of one aggregate in sequence order.
    ReadAggregate(ctx context.Context, aggregateType string, aggregateID string) ([]Envelope, error)
}

func RoutingKey(aggregateType string, eventType string) string {
    return strings.ToLower(aggregateType) + "." + strings.ToLower(eventType)
}

type voided struct{}

func (voided) EventType() string  { return VoidEventType }
func (voided) SchemaVersion() int { return 1 }

// NewVoid builds the marker that claims sequenceNumber in a stream without
// an event. Void markers belong to no aggregate and are never published.
func NewVoid(aggregateType string, sequenceNumber uint64, timestamp time.Time) Envelope {
    return Envelope{
        AggregateType:  aggregateType,
        EventType:      VoidEventType,
        SequenceNumber: sequenceNumber,
        Timestamp:      timestamp.UTC().Truncate(time.Microsecond),
        SchemaVersion:  voided{}.SchemaVersion(),
        Payload:        []byte(`{}`),
    }
}

func (e Envelope) Void() bool {
    return e.EventType == VoidEventType
}
