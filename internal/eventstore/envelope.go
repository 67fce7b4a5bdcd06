package eventstore

import (
    "encoding/json"
    "fmt"
    "strconv"
    "time"

    "github.com/walletera/food-delivery/internal/domain/shared"

    "github.com/walletera/eventskit/events"
)

const (
    keyAggregate     = "aggregate"
    keyAggregateID   = "aggregate_id"
    keyEventType     = "event_type"
    keyEventID       = "event_id"
    keyTimestamp     = "timestamp"
    keySchemaVersion = "schema_version"

    contentTypeJSON = "application/json"
)

var reservedKeys = []string{keyAggregate, keyAggregateID, keyEventType, keyEventID, keyTimestamp, keySchemaVersion}

// DomainEvent is the payload of an envelope. Each event type declares its
// wire name and the version of its payload schema.
type DomainEvent interface {
    EventType() string
    SchemaVersion() int
}

var _ events.EventData = Envelope{}

// Envelope is the immutable record of one domain event. On the wire it is a
// flat JSON object: the envelope keys plus the payload fields.
type Envelope struct {
    AggregateType  string
    AggregateID    string
    EventType      string
    SequenceNumber uint64
    Timestamp      time.Time
    SchemaVersion  int
    Payload        json.RawMessage
}

// NewEnvelope wraps event for the given aggregate using an already assigned
// sequence number.
func NewEnvelope(aggregateType, aggregateID string, sequenceNumber uint64, timestamp time.Time, event DomainEvent) (Envelope, error) {
    payload, err := json.Marshal(event)
    if err != nil {
        return Envelope{}, fmt.Errorf("failed marshaling %s payload: %w", event.EventType(), err)
    }
    if len(payload) == 0 || payload[0] != '{' {
        return Envelope{}, fmt.Errorf("payload of %s must be a json object", event.EventType())
    }
    return Envelope{
        AggregateType:  aggregateType,
        AggregateID:    aggregateID,
        EventType:      event.EventType(),
        SequenceNumber: sequenceNumber,
        Timestamp:      timestamp.UTC().Truncate(time.Microsecond),
        SchemaVersion:  event.SchemaVersion(),
        Payload:        payload,
    }, nil
}

// DecodePayload unmarshals the payload into target, refusing schema versions
// newer than the one target understands.
func (e Envelope) DecodePayload(target DomainEvent) error {
    if e.SchemaVersion > target.SchemaVersion() {
        return fmt.Errorf("unsupported schema version %d for %s (max %d)", e.SchemaVersion, e.EventType, target.SchemaVersion())
    }
    if err := json.Unmarshal(e.Payload, target); err != nil {
        return fmt.Errorf("failed decoding %s payload: %w", e.EventType, err)
    }
    return nil
}

func (e Envelope) MarshalJSON() ([]byte, error) {
    fields := map[string]json.RawMessage{}
    if len(e.Payload) > 0 {
        if err := json.Unmarshal(e.Payload, &fields); err != nil {
            return nil, fmt.Errorf("envelope payload is not a json object: %w", err)
        }
    }
    for _, key := range reservedKeys {
        if _, clash := fields[key]; clash {
            return nil, fmt.Errorf("payload field %q collides with an envelope key", key)
        }
    }
    var err error
    set := func(key string, value any) {
        if err != nil {
            return
        }
        fields[key], err = json.Marshal(value)
    }
    set(keyAggregate, e.AggregateType)
    set(keyAggregateID, e.AggregateID)
    set(keyEventType, e.EventType)
    set(keyEventID, e.SequenceNumber)
    set(keyTimestamp, shared.FormatTime(e.Timestamp))
    set(keySchemaVersion, e.SchemaVersion)
    if err != nil {
        return nil, err
    }
    return json.Marshal(fields)
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
    fields := map[string]json.RawMessage{}
    if err := json.Unmarshal(data, &fields); err != nil {
        return fmt.Errorf("envelope is not a json object: %w", err)
    }

    var decoded Envelope
    if err := unmarshalRequired(fields, keyAggregate, &decoded.AggregateType); err != nil {
        return err
    }
    if err := unmarshalRequired(fields, keyAggregateID, &decoded.AggregateID); err != nil {
        return err
    }
    if err := unmarshalRequired(fields, keyEventType, &decoded.EventType); err != nil {
        return err
    }
    if err := unmarshalRequired(fields, keyEventID, &decoded.SequenceNumber); err != nil {
        return err
    }
    var timestamp string
    if err := unmarshalRequired(fields, keyTimestamp, &timestamp); err != nil {
        return err
    }
    parsed, err := shared.ParseTime(timestamp)
    if err != nil {
        return err
    }
    decoded.Timestamp = parsed

    decoded.SchemaVersion = 1
    if raw, ok := fields[keySchemaVersion]; ok {
        if err := json.Unmarshal(raw, &decoded.SchemaVersion); err != nil {
            return fmt.Errorf("invalid %s: %w", keySchemaVersion, err)
        }
    }

    for _, key := range reservedKeys {
        delete(fields, key)
    }
    decoded.Payload, err = json.Marshal(fields)
    if err != nil {
        return err
    }

    *e = decoded
    return nil
}

func unmarshalRequired(fields map[string]json.RawMessage, key string, target any) error {
    raw, ok := fields[key]
    if !ok {
        return fmt.Errorf("envelope key %q is missing", key)
    }
    if err := json.Unmarshal(raw, target); err != nil {
        return fmt.Errorf("invalid envelope key %q: %w", key, err)
    }
    return nil
}

// RoutingKey is the topic routing key of the envelope, e.g. order.ordercreated.
func (e Envelope) RoutingKey() string {
    return RoutingKey(e.AggregateType, e.EventType)
}

func (e Envelope) ID() string {
    return e.AggregateType + "-" + strconv.FormatUint(e.SequenceNumber, 10)
}

func (e Envelope) Type() string {
    return e.EventType
}

func (e Envelope) AggregateVersion() uint64 {
    return e.SequenceNumber
}

func (e Envelope) CorrelationID() string {
    return e.AggregateID
}

func (e Envelope) DataContentType() string {
    return contentTypeJSON
}

func (e Envelope) CreatedAt() time.Time {
    return e.Timestamp
}

func (e Envelope) Serialize() ([]byte, error) {
    return json.Marshal(e)
}
