package eventstore

import (
    "context"
    "encoding/json"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

type orderCreated struct {
    ConsumerID string `json:"consumer_id"`
    Total      int64  `json:"total"`
}

func (orderCreated) EventType() string  { return "OrderCreated" }
func (orderCreated) SchemaVersion() int { return 2 }

type orderCreatedV1 struct {
    orderCreated
}

func (orderCreatedV1) SchemaVersion() int { return 1 }

type clashingEvent struct {
    EventID string `json:"event_id"`
}

func (clashingEvent) EventType() string  { return "Clashing" }
func (clashingEvent) SchemaVersion() int { return 1 }

var createdAt = time.Date(2024, 3, 1, 10, 30, 0, 123456789, time.UTC)

func TestEnvelopeWireFormatIsFlat(t *testing.T) {
    envelope, err := NewEnvelope("ORDER", "o-1", 7, createdAt, orderCreated{ConsumerID: "c-1", Total: 5100})
    require.NoError(t, err)

    data, err := json.Marshal(envelope)
    require.NoError(t, err)
    assert.JSONEq(t, `{
        "aggregate": "ORDER",
        "aggregate_id": "o-1",
        "event_type": "OrderCreated",
        "event_id": 7,
        "timestamp": "2024-03-01T10:30:00.123456Z",
        "schema_version": 2,
        "consumer_id": "c-1",
        "total": 5100
    }`, string(data))

    var decoded Envelope
    require.NoError(t, json.Unmarshal(data, &decoded))
    assert.Equal(t, envelope.AggregateType, decoded.AggregateType)
    assert.Equal(t, envelope.AggregateID, decoded.AggregateID)
    assert.Equal(t, envelope.SequenceNumber, decoded.SequenceNumber)
    assert.True(t, envelope.Timestamp.Equal(decoded.Timestamp))
    assert.Equal(t, "order.ordercreated", decoded.RoutingKey())
    assert.Equal(t, "ORDER-7", decoded.ID())

    var payload orderCreated
    require.NoError(t, decoded.DecodePayload(&payload))
    assert.Equal(t, orderCreated{ConsumerID: "c-1", Total: 5100}, payload)
}

func TestEnvelopeWithoutSchemaVersionDefaultsToOne(t *testing.T) {
    var decoded Envelope
    err := json.Unmarshal([]byte(`{
        "aggregate": "ORDER",
        "aggregate_id": "o-1",
        "event_type": "OrderCreated",
        "event_id": 1,
        "timestamp": "2024-03-01T10:30:00.000000Z",
        "consumer_id": "c-1"
    }`), &decoded)
    require.NoError(t, err)
    assert.Equal(t, 1, decoded.SchemaVersion)
    assert.JSONEq(t, `{"consumer_id": "c-1"}`, string(decoded.Payload))
}

func TestEnvelopeRejectsMissingKeys(t *testing.T) {
    var decoded Envelope
    err := json.Unmarshal([]byte(`{"aggregate": "ORDER", "aggregate_id": "o-1", "event_type": "OrderCreated"}`), &decoded)
    require.ErrorContains(t, err, "event_id")
}

func TestPayloadCannotShadowEnvelopeKeys(t *testing.T) {
    envelope, err := NewEnvelope("ORDER", "o-1", 1, createdAt, clashingEvent{EventID: "x"})
    require.NoError(t, err)
    _, err = json.Marshal(envelope)
    require.Error(t, err)
}

func TestNewerSchemaVersionsAreRefused(t *testing.T) {
    envelope, err := NewEnvelope("ORDER", "o-1", 1, createdAt, orderCreated{ConsumerID: "c-1"})
    require.NoError(t, err)

    var old orderCreatedV1
    require.ErrorContains(t, envelope.DecodePayload(&old), "unsupported schema version 2")
}

type stubSequencer struct {
    next uint64
    err  error
}

func (s *stubSequencer) Next(context.Context, string) (uint64, error) {
    s.next++
    return s.next, s.err
}

type stubStore struct {
    Store
    appended []Envelope
}

func (s *stubStore) Append(_ context.Context, envelopes ...Envelope) error {
    s.appended = append(s.appended, envelopes...)
    return nil
}

func TestRecorderDrawsOneSequencePerEvent(t *testing.T) {
    recorder := NewRecorder(&stubSequencer{next: 41}, WithClock(func() time.Time { return createdAt }))
    store := &stubStore{}

    envelopes, err := recorder.Record(context.Background(), store, "ORDER", "o-1",
        orderCreated{ConsumerID: "c-1"},
        orderCreated{ConsumerID: "c-2"},
    )
    require.NoError(t, err)
    require.Len(t, envelopes, 2)
    assert.Equal(t, uint64(42), envelopes[0].SequenceNumber)
    assert.Equal(t, uint64(43), envelopes[1].SequenceNumber)
    assert.Equal(t, createdAt.Truncate(time.Microsecond), envelopes[0].Timestamp)
    assert.Equal(t, envelopes, store.appended)
}

func TestRecorderSurfacesSequencerErrors(t *testing.T) {
    unavailable := errors.New("connection refused")
    recorder := NewRecorder(&stubSequencer{err: unavailable})

    _, err := recorder.Wrap(context.Background(), "ORDER", "o-1", orderCreated{})
    require.ErrorIs(t, err, unavailable)
}
