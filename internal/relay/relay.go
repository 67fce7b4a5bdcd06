package relay

import (
    "context"
    "errors"
    "fmt"
    "log/slog"
    "time"

    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/eventstore"
    "github.com/walletera/food-delivery/internal/projection"
    "github.com/walletera/food-delivery/pkg/logattr"

    "github.com/walletera/eventskit/events"
)

const (
    checkpointReplicaType = "relay.checkpoint"

    defaultBatchSize    = 100
    defaultPollInterval = 200 * time.Millisecond
    defaultGapTimeout   = 5 * time.Second
)

type checkpoint struct {
    Stream        string `json:"stream"`
    LastPublished uint64 `json:"last_published"`
}

// Relay publishes stored envelopes to the message broker, stream by stream,
// after the last published sequence number. An envelope is checkpointed only
// after it was published, so delivery is at least once.
type Relay struct {
    store        eventstore.Store
    publisher    events.Publisher
    checkpoints  *projection.Applier[checkpoint]
    exchange     string
    streams      []string
    batchSize    int
    pollInterval time.Duration
    gapTimeout   time.Duration
    now          func() time.Time
    logger       *slog.Logger
}

type Opt func(r *Relay)

func WithBatchSize(batchSize int) Opt {
    return func(r *Relay) { r.batchSize = batchSize }
}

func WithPollInterval(pollInterval time.Duration) Opt {
    return func(r *Relay) { r.pollInterval = pollInterval }
}

// WithGapTimeout sets how long the relay waits for a missing sequence
// number. Numbers are drawn before the write commits, so a gap is usually a
// write still in flight. Past the timeout the relay claims the number with a
// void marker; a write arriving later fails and retries with a new number.
func WithGapTimeout(gapTimeout time.Duration) Opt {
    return func(r *Relay) { r.gapTimeout = gapTimeout }
}

func WithClock(now func() time.Time) Opt {
    return func(r *Relay) { r.now = now }
}

func New(store eventstore.Store, checkpoints projection.ReplicaStore, publisher events.Publisher, exchange string, streams []string, logger *slog.Logger, opts ...Opt) *Relay {
    relay := &Relay{
        store:        store,
        publisher:    publisher,
        checkpoints:  projection.NewApplier[checkpoint](checkpoints, checkpointReplicaType, logger),
        exchange:     exchange,
        streams:      streams,
        batchSize:    defaultBatchSize,
        pollInterval: defaultPollInterval,
        gapTimeout:   defaultGapTimeout,
        now:          time.Now,
        logger:       logger,
    }
    for _, opt := range opts {
        opt(relay)
    }
    return relay
}

// Run polls until ctx is done.
func (r *Relay) Run(ctx context.Context) {
    ticker := time.NewTicker(r.pollInterval)
    defer ticker.Stop()
    for {
        _, err := r.PublishPending(ctx)
        if err != nil && ctx.Err() == nil {
            r.logger.Error("failed relaying events", logattr.Error(err.Error()))
        }
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
        }
    }
}

// PublishPending publishes one batch of every stream and returns how many
// envelopes went out.
func (r *Relay) PublishPending(ctx context.Context) (int, error) {
    published := 0
    for _, stream := range r.streams {
        count, err := r.publishStream(ctx, stream)
        published += count
        if err != nil {
            return published, err
        }
    }
    return published, nil
}

func (r *Relay) publishStream(ctx context.Context, stream string) (int, error) {
    last, err := r.lastPublished(ctx, stream)
    if err != nil {
        return 0, err
    }
    envelopes, err := r.store.ReadStream(ctx, stream, last, r.batchSize)
    if err != nil {
        return 0, fmt.Errorf("failed reading %s stream: %w", stream, err)
    }
    published := 0
    for _, envelope := range envelopes {
        if envelope.SequenceNumber != last+1 {
            if r.now().Sub(envelope.Timestamp) < r.gapTimeout {
                break
            }
            claimed, err := r.claimGap(ctx, stream, last+1, envelope.SequenceNumber)
            if err != nil {
                return published, err
            }
            if !claimed {
                // a write landed in the gap, it is read on the next poll
                break
            }
        }
        if !envelope.Void() {
            err := r.publisher.Publish(ctx, envelope, events.RoutingInfo{
                Topic:      r.exchange,
                RoutingKey: envelope.RoutingKey(),
            })
            if err != nil {
                return published, fmt.Errorf("failed publishing %s: %w", envelope.ID(), err)
            }
        }
        applied, err := r.checkpoints.Apply(ctx, stream, envelope.SequenceNumber, func(checkpoint, bool) (checkpoint, error) {
            return checkpoint{Stream: stream, LastPublished: envelope.SequenceNumber}, nil
        })
        if err != nil {
            return published, err
        }
        if !applied {
            // another relay moved the checkpoint past this envelope
            return published, nil
        }
        last = envelope.SequenceNumber
        if envelope.Void() {
            continue
        }
        r.logger.Debug(
            "event published",
            logattr.RoutingKey(envelope.RoutingKey()),
            logattr.AggregateId(envelope.AggregateID),
            logattr.SequenceNumber(envelope.SequenceNumber),
        )
        published++
    }
    return published, nil
}

// claimGap voids the sequence numbers in [from, to). It reports false when
// one of them already holds an event.
func (r *Relay) claimGap(ctx context.Context, stream string, from uint64, to uint64) (bool, error) {
    for sequenceNumber := from; sequenceNumber < to; sequenceNumber++ {
        err := r.store.Append(ctx, eventstore.NewVoid(stream, sequenceNumber, r.now()))
        if errors.Is(err, eventstore.ErrSequenceTaken) {
            return false, nil
        }
        if err != nil {
            return false, fmt.Errorf("failed voiding %s sequence %d: %w", stream, sequenceNumber, err)
        }
        r.logger.Warn(
            "sequence gap skipped",
            logattr.StreamName(stream),
            logattr.SequenceNumber(sequenceNumber),
        )
    }
    return true, nil
}

func (r *Relay) lastPublished(ctx context.Context, stream string) (uint64, error) {
    current, err := r.checkpoints.FindByID(ctx, stream)
    if errors.Is(err, shared.ErrNotFound) {
        return 0, nil
    }
    if err != nil {
        return 0, err
    }
    return current.LastPublished, nil
}
