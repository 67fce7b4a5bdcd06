package memory

import (
    "context"
    "fmt"
    "sort"
    "sync"

    "github.com/walletera/food-delivery/internal/eventstore"
)

var (
    _ eventstore.Store     = (*EventStore)(nil)
    _ eventstore.Sequencer = (*EventStore)(nil)
)

// EventStore keeps the envelope log and the stream sequences in process.
type EventStore struct {
    mu        sync.RWMutex
    streams   map[string][]eventstore.Envelope
    sequences map[string]uint64
}

func NewEventStore() *EventStore {
    return &EventStore{
        streams:   map[string][]eventstore.Envelope{},
        sequences: map[string]uint64{},
    }
}

func (s *EventStore) Next(_ context.Context, streamKey string) (uint64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.sequences[streamKey]++
    return s.sequences[streamKey], nil
}

func (s *EventStore) Append(_ context.Context, envelopes ...eventstore.Envelope) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if err := s.checkAppend(envelopes); err != nil {
        return err
    }
    s.append(envelopes)
    return nil
}

func (s *EventStore) ReadStream(_ context.Context, aggregateType string, afterSequence uint64, limit int) ([]eventstore.Envelope, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    var envelopes []eventstore.Envelope
    for _, envelope := range s.streams[aggregateType] {
        if envelope.SequenceNumber <= afterSequence {
            continue
        }
        envelopes = append(envelopes, envelope)
        if limit > 0 && len(envelopes) == limit {
            break
        }
    }
    return envelopes, nil
}

func (s *EventStore) ReadAggregate(_ context.Context, aggregateType string, aggregateID string) ([]eventstore.Envelope, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    var envelopes []eventstore.Envelope
    for _, envelope := range s.streams[aggregateType] {
        if envelope.AggregateID == aggregateID {
            envelopes = append(envelopes, envelope)
        }
    }
    return envelopes, nil
}

// checkAppend and append expect s.mu to be held.
func (s *EventStore) checkAppend(envelopes []eventstore.Envelope) error {
    for _, envelope := range envelopes {
        for _, stored := range s.streams[envelope.AggregateType] {
            if stored.SequenceNumber == envelope.SequenceNumber {
                return fmt.Errorf("envelope %s: %w", envelope.ID(), eventstore.ErrSequenceTaken)
            }
        }
    }
    return nil
}

// Sequences are drawn before the write, so concurrent writers may commit out
// of order. Streams are kept sorted by sequence number.
func (s *EventStore) append(envelopes []eventstore.Envelope) {
    for _, envelope := range envelopes {
        stream := append(s.streams[envelope.AggregateType], envelope)
        sort.SliceStable(stream, func(i, j int) bool { return stream[i].SequenceNumber < stream[j].SequenceNumber })
        s.streams[envelope.AggregateType] = stream
    }
}
