package relay_test

import (
    "context"
    "errors"
    "io"
    "log/slog"
    "sync"
    "testing"
    "time"

    "github.com/walletera/food-delivery/internal/adapters/memory"
    "github.com/walletera/food-delivery/internal/adapters/storetest"
    "github.com/walletera/food-delivery/internal/eventstore"
    "github.com/walletera/food-delivery/internal/relay"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "github.com/walletera/eventskit/events"
)

type recordingPublisher struct {
    mu        sync.Mutex
    published []events.EventData
    routing   []events.RoutingInfo
    err       error
}

func (p *recordingPublisher) Publish(_ context.Context, data events.EventData, info events.RoutingInfo) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.err != nil {
        return p.err
    }
    p.published = append(p.published, data)
    p.routing = append(p.routing, info)
    return nil
}

func (p *recordingPublisher) sequenceNumbers() []uint64 {
    p.mu.Lock()
    defer p.mu.Unlock()
    var numbers []uint64
    for _, data := range p.published {
        numbers = append(numbers, data.AggregateVersion())
    }
    return numbers
}

type relayTest struct {
    store     *memory.EventStore
    replicas  *memory.ReplicaStore
    publisher *recordingPublisher
    now       time.Time
}

func newRelayTest() *relayTest {
    return &relayTest{
        store:     memory.NewEventStore(),
        replicas:  memory.NewReplicaStore(),
        publisher: &recordingPublisher{},
        now:       time.Now(),
    }
}

func (r *relayTest) relay(opts ...relay.Opt) *relay.Relay {
    opts = append([]relay.Opt{relay.WithClock(func() time.Time { return r.now })}, opts...)
    logger := slog.New(slog.NewTextHandler(io.Discard, nil))
    return relay.New(r.store, r.replicas, r.publisher, "food-delivery", []string{"ORDER", "TICKET"}, logger, opts...)
}

func (r *relayTest) append(t *testing.T, envelopes ...eventstore.Envelope) {
    t.Helper()
    require.NoError(t, r.store.Append(context.Background(), envelopes...))
}

func TestPublishesEveryStreamInOrder(t *testing.T) {
    r := newRelayTest()
    r.append(t,
        storetest.Envelope(t, "ORDER", "o-1", 1, "a"),
        storetest.Envelope(t, "ORDER", "o-2", 2, "b"),
        storetest.Envelope(t, "TICKET", "o-1", 1, "c"),
    )

    published, err := r.relay().PublishPending(context.Background())
    require.NoError(t, err)
    assert.Equal(t, 3, published)
    assert.Equal(t, []uint64{1, 2, 1}, r.publisher.sequenceNumbers())
    assert.Equal(t, "food-delivery", r.publisher.routing[0].Topic)
    assert.Equal(t, "order.noteadded", r.publisher.routing[0].RoutingKey)
    assert.Equal(t, "ticket.noteadded", r.publisher.routing[2].RoutingKey)
}

func TestCheckpointSurvivesRestart(t *testing.T) {
    ctx := context.Background()
    r := newRelayTest()
    r.append(t, storetest.Envelope(t, "ORDER", "o-1", 1, "a"))
    _, err := r.relay().PublishPending(ctx)
    require.NoError(t, err)

    r.append(t, storetest.Envelope(t, "ORDER", "o-1", 2, "b"))
    published, err := r.relay().PublishPending(ctx)
    require.NoError(t, err)
    assert.Equal(t, 1, published)
    assert.Equal(t, []uint64{1, 2}, r.publisher.sequenceNumbers())

    published, err = r.relay().PublishPending(ctx)
    require.NoError(t, err)
    assert.Zero(t, published)
}

func TestBatchSize(t *testing.T) {
    ctx := context.Background()
    r := newRelayTest()
    for i := uint64(1); i <= 5; i++ {
        r.append(t, storetest.Envelope(t, "ORDER", "o-1", i, "note"))
    }
    rl := r.relay(relay.WithBatchSize(2))

    published, err := rl.PublishPending(ctx)
    require.NoError(t, err)
    assert.Equal(t, 2, published)
    published, err = rl.PublishPending(ctx)
    require.NoError(t, err)
    assert.Equal(t, 2, published)
    assert.Equal(t, []uint64{1, 2, 3, 4}, r.publisher.sequenceNumbers())
}

func TestGapsAreAwaitedThenSkipped(t *testing.T) {
    ctx := context.Background()
    r := newRelayTest()
    rl := r.relay(relay.WithGapTimeout(5 * time.Second))
    r.append(t,
        storetest.Envelope(t, "ORDER", "o-1", 1, "a"),
        storetest.Envelope(t, "ORDER", "o-3", 3, "c"),
    )

    published, err := rl.PublishPending(ctx)
    require.NoError(t, err)
    assert.Equal(t, 1, published)
    assert.Equal(t, []uint64{1}, r.publisher.sequenceNumbers())

    r.now = r.now.Add(6 * time.Second)
    published, err = rl.PublishPending(ctx)
    require.NoError(t, err)
    assert.Equal(t, 1, published)
    assert.Equal(t, []uint64{1, 3}, r.publisher.sequenceNumbers())

    err = r.store.Append(ctx, storetest.Envelope(t, "ORDER", "o-2", 2, "b"))
    require.ErrorIs(t, err, eventstore.ErrSequenceTaken)
    stream, err := r.store.ReadStream(ctx, "ORDER", 1, 0)
    require.NoError(t, err)
    require.Len(t, stream, 2)
    assert.True(t, stream[0].Void())
}

// lateWriteStore commits a pending write right before the first void marker
// is appended.
type lateWriteStore struct {
    *memory.EventStore
    late []eventstore.Envelope
}

func (s *lateWriteStore) Append(ctx context.Context, envelopes ...eventstore.Envelope) error {
    if len(s.late) > 0 && len(envelopes) == 1 && envelopes[0].Void() {
        late := s.late
        s.late = nil
        if err := s.EventStore.Append(ctx, late...); err != nil {
            return err
        }
    }
    return s.EventStore.Append(ctx, envelopes...)
}

func TestGapIsNotClaimedWhenTheWriteLands(t *testing.T) {
    ctx := context.Background()
    r := newRelayTest()
    store := &lateWriteStore{
        EventStore: r.store,
        late:       []eventstore.Envelope{storetest.Envelope(t, "ORDER", "o-1", 1, "a")},
    }
    logger := slog.New(slog.NewTextHandler(io.Discard, nil))
    rl := relay.New(store, r.replicas, r.publisher, "food-delivery", []string{"ORDER"}, logger,
        relay.WithGapTimeout(5*time.Second),
        relay.WithClock(func() time.Time { return r.now }),
    )
    r.append(t, storetest.Envelope(t, "ORDER", "o-2", 2, "b"))
    r.now = r.now.Add(6 * time.Second)

    published, err := rl.PublishPending(ctx)
    require.NoError(t, err)
    assert.Zero(t, published)

    published, err = rl.PublishPending(ctx)
    require.NoError(t, err)
    assert.Equal(t, 2, published)
    assert.Equal(t, []uint64{1, 2}, r.publisher.sequenceNumbers())
}

func TestVoidedSequenceNumbersAreNotAwaited(t *testing.T) {
    ctx := context.Background()
    r := newRelayTest()
    r.append(t,
        storetest.Envelope(t, "ORDER", "o-1", 1, "a"),
        eventstore.NewVoid("ORDER", 2, r.now),
        storetest.Envelope(t, "ORDER", "o-3", 3, "c"),
    )

    published, err := r.relay().PublishPending(ctx)
    require.NoError(t, err)
    assert.Equal(t, 2, published)
    assert.Equal(t, []uint64{1, 3}, r.publisher.sequenceNumbers())
}

func TestGapFilledInTimeIsPublishedInOrder(t *testing.T) {
    ctx := context.Background()
    r := newRelayTest()
    rl := r.relay()
    r.append(t, storetest.Envelope(t, "ORDER", "o-2", 2, "b"))

    published, err := rl.PublishPending(ctx)
    require.NoError(t, err)
    assert.Zero(t, published)

    r.append(t, storetest.Envelope(t, "ORDER", "o-1", 1, "a"))
    published, err = rl.PublishPending(ctx)
    require.NoError(t, err)
    assert.Equal(t, 2, published)
    assert.Equal(t, []uint64{1, 2}, r.publisher.sequenceNumbers())
}

func TestPublishFailureKeepsCheckpoint(t *testing.T) {
    ctx := context.Background()
    r := newRelayTest()
    r.append(t, storetest.Envelope(t, "ORDER", "o-1", 1, "a"))
    r.publisher.err = errors.New("broker down")

    _, err := r.relay().PublishPending(ctx)
    require.ErrorContains(t, err, "broker down")

    r.publisher.err = nil
    published, err := r.relay().PublishPending(ctx)
    require.NoError(t, err)
    assert.Equal(t, 1, published)
    assert.Equal(t, []uint64{1}, r.publisher.sequenceNumbers())
}

func TestRunStopsWithContext(t *testing.T) {
    r := newRelayTest()
    r.append(t, storetest.Envelope(t, "TICKET", "o-1", 1, "a"))
    ctx, cancel := context.WithCancel(context.Background())
    done := make(chan struct{})
    go func() {
        r.relay(relay.WithPollInterval(time.Millisecond)).Run(ctx)
        close(done)
    }()

    require.Eventually(t, func() bool {
        return len(r.publisher.sequenceNumbers()) == 1
    }, 2*time.Second, 5*time.Millisecond)
    cancel()
    select {
    case <-done:
    case <-time.After(2 * time.Second):
        require.FailNow(t, "relay did not stop")
    }
}
