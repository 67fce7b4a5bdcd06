package mongodb

import (
    "context"
    "encoding/json"
    "fmt"

    "github.com/walletera/food-delivery/internal/eventstore"

    "go.mongodb.org/mongo-driver/v2/bson"
    "go.mongodb.org/mongo-driver/v2/mongo"
    "go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ eventstore.Store = (*EventStore)(nil)

// EventStore stores every envelope as its flat wire object, one document
// per envelope.
type EventStore struct {
    db *mongo.Database
}

func NewEventStore(db *mongo.Database) *EventStore {
    return &EventStore{db: db}
}

func (e *EventStore) Append(ctx context.Context, envelopes ...eventstore.Envelope) error {
    if len(envelopes) == 0 {
        return nil
    }
    documents := make([]any, 0, len(envelopes))
    for _, envelope := range envelopes {
        raw, err := json.Marshal(envelope)
        if err != nil {
            return err
        }
        document, err := toDocument(raw)
        if err != nil {
            return err
        }
        documents = append(documents, document)
    }
    _, err := e.collection().InsertMany(ctx, documents)
    if mongo.IsDuplicateKeyError(err) {
        return fmt.Errorf("appending envelopes: %w", eventstore.ErrSequenceTaken)
    }
    if err != nil {
        return fmt.Errorf("failed appending envelopes: %w", err)
    }
    return nil
}

func (e *EventStore) ReadStream(ctx context.Context, aggregateType string, afterSequence uint64, limit int) ([]eventstore.Envelope, error) {
    findOpts := options.Find().
        SetSort(bson.D{{Key: "event_id", Value: 1}}).
        SetProjection(bson.M{"_id": 0})
    if limit > 0 {
        findOpts.SetLimit(int64(limit))
    }
    return e.find(ctx, bson.M{
        "aggregate": aggregateType,
        "event_id":  bson.M{"$gt": int64(afterSequence)},
    }, findOpts)
}

func (e *EventStore) ReadAggregate(ctx context.Context, aggregateType string, aggregateID string) ([]eventstore.Envelope, error) {
    findOpts := options.Find().
        SetSort(bson.D{{Key: "event_id", Value: 1}}).
        SetProjection(bson.M{"_id": 0})
    return e.find(ctx, bson.M{
        "aggregate":    aggregateType,
        "aggregate_id": aggregateID,
    }, findOpts)
}

func (e *EventStore) find(ctx context.Context, filter bson.M, findOpts *options.FindOptionsBuilder) ([]eventstore.Envelope, error) {
    cursor, err := e.collection().Find(ctx, filter, findOpts)
    if err != nil {
        return nil, fmt.Errorf("failed reading envelopes: %w", err)
    }
    defer cursor.Close(ctx)
    var envelopes []eventstore.Envelope
    for cursor.Next(ctx) {
        data, err := fromDocument(cursor.Current)
        if err != nil {
            return nil, err
        }
        var envelope eventstore.Envelope
        if err := json.Unmarshal(data, &envelope); err != nil {
            return nil, err
        }
        envelopes = append(envelopes, envelope)
    }
    return envelopes, cursor.Err()
}

func (e *EventStore) collection() *mongo.Collection {
    return e.db.Collection(EventsCollection)
}
