package eventstore

import (
    "context"
    "errors"
    "fmt"
    "time"
)

const maxRecordAttempts = 5

// Recorder turns domain events into envelopes, drawing one sequence number
// per event from the stream of the aggregate type.
type Recorder struct {
    sequencer Sequencer
    voids     Store
    now       func() time.Time
}

type RecorderOpt func(r *Recorder)

func WithClock(now func() time.Time) RecorderOpt {
    return func(r *Recorder) { r.now = now }
}

// WithVoids lets the recorder release the numbers of failed writes by
// appending void markers to store.
func WithVoids(store Store) RecorderOpt {
    return func(r *Recorder) { r.voids = store }
}

func NewRecorder(sequencer Sequencer, opts ...RecorderOpt) *Recorder {
    recorder := &Recorder{
        sequencer: sequencer,
        now:       time.Now,
    }
    for _, opt := range opts {
        opt(recorder)
    }
    return recorder
}

func (r *Recorder) Wrap(ctx context.Context, aggregateType string, aggregateID string, domainEvents ...DomainEvent) ([]Envelope, error) {
    envelopes := make([]Envelope, 0, len(domainEvents))
    for _, domainEvent := range domainEvents {
        sequenceNumber, err := r.sequencer.Next(ctx, aggregateType)
        if err != nil {
            return nil, fmt.Errorf("failed getting next sequence number for %s: %w", aggregateType, err)
        }
        envelope, err := NewEnvelope(aggregateType, aggregateID, sequenceNumber, r.now(), domainEvent)
        if err != nil {
            return nil, err
        }
        envelopes = append(envelopes, envelope)
    }
    return envelopes, nil
}

// Record wraps and appends events that are not tied to a mutation of the
// aggregate record, such as saga requests.
func (r *Recorder) Record(ctx context.Context, store Store, aggregateType string, aggregateID string, domainEvents ...DomainEvent) ([]Envelope, error) {
    for attempt := 1; ; attempt++ {
        envelopes, err := r.Wrap(ctx, aggregateType, aggregateID, domainEvents...)
        if err != nil {
            return nil, err
        }
        err = store.Append(ctx, envelopes...)
        if err == nil {
            return envelopes, nil
        }
        r.Release(ctx, envelopes)
        if !errors.Is(err, ErrSequenceTaken) || attempt == maxRecordAttempts {
            return nil, fmt.Errorf("failed appending %s events: %w", aggregateType, err)
        }
    }
}

// Release voids the sequence numbers of envelopes whose write failed, so
// readers of the stream do not wait for them. A number that did get written
// keeps its event: the void append for it fails with ErrSequenceTaken.
func (r *Recorder) Release(ctx context.Context, envelopes []Envelope) {
    if r.voids == nil {
        return
    }
    for _, envelope := range envelopes {
        _ = r.voids.Append(ctx, NewVoid(envelope.AggregateType, envelope.SequenceNumber, r.now()))
    }
}
