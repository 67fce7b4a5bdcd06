package memory

import (
    "context"
    "testing"

    "github.com/walletera/food-delivery/internal/adapters/storetest"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestSequencer(t *testing.T) {
    storetest.RunSequencer(t, NewEventStore())
}

func TestEventStore(t *testing.T) {
    storetest.RunEventStore(t, NewEventStore())
}

func TestRecordStore(t *testing.T) {
    events := NewEventStore()
    storetest.RunRecordStore(t, NewRecordStore(events), events)
}

func TestReplicaStore(t *testing.T) {
    storetest.RunReplicaStore(t, NewReplicaStore())
}

func TestReadStreamAfterOutOfOrderCommits(t *testing.T) {
    ctx := context.Background()
    events := NewEventStore()

    first, err := events.Next(ctx, "ORDER")
    require.NoError(t, err)
    second, err := events.Next(ctx, "ORDER")
    require.NoError(t, err)

    require.NoError(t, events.Append(ctx, storetest.Envelope(t, "ORDER", "o-2", second, "committed first")))
    visible, err := events.ReadStream(ctx, "ORDER", 0, 0)
    require.NoError(t, err)
    require.Len(t, visible, 1)
    assert.Equal(t, second, visible[0].SequenceNumber)

    require.NoError(t, events.Append(ctx, storetest.Envelope(t, "ORDER", "o-1", first, "committed second")))
    visible, err = events.ReadStream(ctx, "ORDER", 0, 0)
    require.NoError(t, err)
    require.Len(t, visible, 2)
    assert.Equal(t, first, visible[0].SequenceNumber)
    assert.Equal(t, second, visible[1].SequenceNumber)
}
