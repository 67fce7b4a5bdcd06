// Package storetest holds the behaviour every storage backend must share.
// Backend packages run these suites against their own stores.
package storetest

import (
    "context"
    "encoding/json"
    "sort"
    "testing"
    "time"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/eventstore"
    "github.com/walletera/food-delivery/internal/projection"

    "github.com/google/uuid"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/sync/errgroup"
)

const concurrentCallers = 50

type noteAdded struct {
    Note string `json:"note"`
}

func (noteAdded) EventType() string  { return "NoteAdded" }
func (noteAdded) SchemaVersion() int { return 1 }

// Envelope builds a NoteAdded envelope for tests.
func Envelope(t *testing.T, aggregateType string, aggregateID string, sequenceNumber uint64, note string) eventstore.Envelope {
    t.Helper()
    envelope, err := eventstore.NewEnvelope(aggregateType, aggregateID, sequenceNumber, time.Now(), noteAdded{Note: note})
    require.NoError(t, err)
    return envelope
}

// uniqueType keeps suites independent when they share a database.
func uniqueType(prefix string) string {
    return prefix + "_" + uuid.NewString()[:8]
}

func RunSequencer(t *testing.T, sequencer eventstore.Sequencer) {
    ctx := context.Background()

    t.Run("sequential calls increase by one", func(t *testing.T) {
        stream := uniqueType("ORDER")
        for want := uint64(1); want <= 5; want++ {
            got, err := sequencer.Next(ctx, stream)
            require.NoError(t, err)
            assert.Equal(t, want, got)
        }
    })

    t.Run("streams are independent", func(t *testing.T) {
        first, err := sequencer.Next(ctx, uniqueType("TICKET"))
        require.NoError(t, err)
        second, err := sequencer.Next(ctx, uniqueType("TICKET"))
        require.NoError(t, err)
        assert.Equal(t, uint64(1), first)
        assert.Equal(t, uint64(1), second)
    })

    t.Run("concurrent calls never share a value", func(t *testing.T) {
        stream := uniqueType("DELIVERY")
        values := make([]uint64, concurrentCallers)
        group, groupCtx := errgroup.WithContext(ctx)
        for i := range values {
            group.Go(func() error {
                value, err := sequencer.Next(groupCtx, stream)
                values[i] = value
                return err
            })
        }
        require.NoError(t, group.Wait())

        sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
        for i, value := range values {
            assert.Equal(t, uint64(i+1), value)
        }
    })
}

func RunEventStore(t *testing.T, store eventstore.Store) {
    ctx := context.Background()

    t.Run("reads a stream in sequence order", func(t *testing.T) {
        stream := uniqueType("ORDER")
        require.NoError(t, store.Append(ctx,
            Envelope(t, stream, "o-1", 2, "second"),
            Envelope(t, stream, "o-2", 1, "first"),
        ))
        require.NoError(t, store.Append(ctx, Envelope(t, stream, "o-1", 3, "third")))

        all, err := store.ReadStream(ctx, stream, 0, 0)
        require.NoError(t, err)
        require.Len(t, all, 3)
        for i, envelope := range all {
            assert.Equal(t, uint64(i+1), envelope.SequenceNumber)
        }
        assert.JSONEq(t, `{"note": "first"}`, string(all[0].Payload))

        tail, err := store.ReadStream(ctx, stream, 1, 1)
        require.NoError(t, err)
        require.Len(t, tail, 1)
        assert.Equal(t, uint64(2), tail[0].SequenceNumber)

        aggregate, err := store.ReadAggregate(ctx, stream, "o-1")
        require.NoError(t, err)
        require.Len(t, aggregate, 2)
        assert.Equal(t, uint64(2), aggregate[0].SequenceNumber)
        assert.Equal(t, uint64(3), aggregate[1].SequenceNumber)
    })

    t.Run("rejects a reused sequence number", func(t *testing.T) {
        stream := uniqueType("ORDER")
        require.NoError(t, store.Append(ctx, Envelope(t, stream, "o-1", 1, "first")))

        err := store.Append(ctx, Envelope(t, stream, "o-2", 1, "again"))
        require.ErrorIs(t, err, eventstore.ErrSequenceTaken)
        require.ErrorIs(t, err, shared.ErrAlreadyExists)

        err = store.Append(ctx, eventstore.NewVoid(stream, 1, time.Now()))
        require.ErrorIs(t, err, eventstore.ErrSequenceTaken)

        stored, err := store.ReadStream(ctx, stream, 0, 0)
        require.NoError(t, err)
        require.Len(t, stored, 1)
        assert.Equal(t, "o-1", stored[0].AggregateID)
    })

    t.Run("an unknown stream is empty", func(t *testing.T) {
        envelopes, err := store.ReadStream(ctx, uniqueType("COURIER"), 0, 10)
        require.NoError(t, err)
        assert.Empty(t, envelopes)
    })
}

func RunRecordStore(t *testing.T, records aggregates.RecordStore, events eventstore.Store) {
    ctx := context.Background()

    t.Run("create then update with the next lock version", func(t *testing.T) {
        recordType := uniqueType("Order")
        record := aggregates.Record{Type: recordType, ID: "o-1", LockVersion: 1, Data: json.RawMessage(`{"state":"APPROVAL_PENDING"}`)}
        require.NoError(t, records.Create(ctx, record, []eventstore.Envelope{Envelope(t, recordType, "o-1", 1, "created")}))

        err := records.Create(ctx, record, nil)
        require.ErrorIs(t, err, shared.ErrAlreadyExists)

        record.LockVersion = 2
        record.Data = json.RawMessage(`{"state":"APPROVED"}`)
        require.NoError(t, records.Update(ctx, record, []eventstore.Envelope{Envelope(t, recordType, "o-1", 2, "approved")}))

        stored, err := records.Get(ctx, recordType, "o-1")
        require.NoError(t, err)
        assert.Equal(t, uint64(2), stored.LockVersion)
        assert.JSONEq(t, `{"state":"APPROVED"}`, string(stored.Data))

        envelopes, err := events.ReadAggregate(ctx, recordType, "o-1")
        require.NoError(t, err)
        assert.Len(t, envelopes, 2)
    })

    t.Run("a stale lock version is a conflict", func(t *testing.T) {
        recordType := uniqueType("Ticket")
        record := aggregates.Record{Type: recordType, ID: "t-1", LockVersion: 1, Data: json.RawMessage(`{"state":"CREATE_PENDING"}`)}
        require.NoError(t, records.Create(ctx, record, nil))

        record.LockVersion = 3
        record.Data = json.RawMessage(`{"state":"ACCEPTED"}`)
        err := records.Update(ctx, record, []eventstore.Envelope{Envelope(t, recordType, "t-1", 1, "lost")})
        require.ErrorIs(t, err, shared.ErrConcurrencyConflict)

        stored, err := records.Get(ctx, recordType, "t-1")
        require.NoError(t, err)
        assert.Equal(t, uint64(1), stored.LockVersion)

        envelopes, err := events.ReadStream(ctx, recordType, 0, 0)
        require.NoError(t, err)
        assert.Empty(t, envelopes)
    })

    t.Run("missing records are not found", func(t *testing.T) {
        recordType := uniqueType("Delivery")
        _, err := records.Get(ctx, recordType, "missing")
        require.ErrorIs(t, err, shared.ErrNotFound)

        err = records.Update(ctx, aggregates.Record{Type: recordType, ID: "missing", LockVersion: 2, Data: json.RawMessage(`{}`)}, nil)
        require.Error(t, err)
    })

    t.Run("find filters on snapshot fields", func(t *testing.T) {
        recordType := uniqueType("Courier")
        require.NoError(t, records.Create(ctx, aggregates.Record{Type: recordType, ID: "c-2", LockVersion: 1, Data: json.RawMessage(`{"available":true}`)}, nil))
        require.NoError(t, records.Create(ctx, aggregates.Record{Type: recordType, ID: "c-1", LockVersion: 1, Data: json.RawMessage(`{"available":true}`)}, nil))
        require.NoError(t, records.Create(ctx, aggregates.Record{Type: recordType, ID: "c-3", LockVersion: 1, Data: json.RawMessage(`{"available":false}`)}, nil))

        found, err := records.Find(ctx, recordType, aggregates.Filter{"available": true})
        require.NoError(t, err)
        require.Len(t, found, 2)
        assert.Equal(t, "c-1", found[0].ID)
        assert.Equal(t, "c-2", found[1].ID)
    })
}

func RunReplicaStore(t *testing.T, replicas projection.ReplicaStore) {
    ctx := context.Background()

    t.Run("put guards on the previous sequence", func(t *testing.T) {
        replicaType := uniqueType("restaurant")
        replica := projection.Replica{Type: replicaType, ID: "r-1", LastAppliedSequence: 3, Data: json.RawMessage(`{"name":"Ajanta"}`)}
        require.NoError(t, replicas.Put(ctx, replica, 0, false))

        err := replicas.Put(ctx, replica, 0, false)
        require.ErrorIs(t, err, shared.ErrConcurrencyConflict)

        replica.LastAppliedSequence = 5
        err = replicas.Put(ctx, replica, 4, true)
        require.ErrorIs(t, err, shared.ErrConcurrencyConflict)

        replica.Data = json.RawMessage(`{"name":"Ajanta Express"}`)
        require.NoError(t, replicas.Put(ctx, replica, 3, true))

        stored, err := replicas.Get(ctx, replicaType, "r-1")
        require.NoError(t, err)
        assert.Equal(t, uint64(5), stored.LastAppliedSequence)
        assert.JSONEq(t, `{"name":"Ajanta Express"}`, string(stored.Data))
    })

    t.Run("missing replicas are not found", func(t *testing.T) {
        _, err := replicas.Get(ctx, uniqueType("restaurant"), "missing")
        require.ErrorIs(t, err, shared.ErrNotFound)
    })

    t.Run("find filters on replica fields", func(t *testing.T) {
        replicaType := uniqueType("history")
        require.NoError(t, replicas.Put(ctx, projection.Replica{Type: replicaType, ID: "h-1", LastAppliedSequence: 1, Data: json.RawMessage(`{"consumer_id":"c-1"}`)}, 0, false))
        require.NoError(t, replicas.Put(ctx, projection.Replica{Type: replicaType, ID: "h-2", LastAppliedSequence: 2, Data: json.RawMessage(`{"consumer_id":"c-2"}`)}, 0, false))

        found, err := replicas.Find(ctx, replicaType, aggregates.Filter{"consumer_id": "c-2"})
        require.NoError(t, err)
        require.Len(t, found, 1)
        assert.Equal(t, "h-2", found[0].ID)
    })
}
