package mongodb

import (
    "context"
    "errors"
    "fmt"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/eventstore"

    "go.mongodb.org/mongo-driver/v2/bson"
    "go.mongodb.org/mongo-driver/v2/mongo"
    "go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ aggregates.RecordStore = (*RecordStore)(nil)

type RecordBSON struct {
    DocumentID  string   `bson:"_id"`
    Type        string   `bson:"type"`
    ID          string   `bson:"id"`
    LockVersion uint64   `bson:"lock_version"`
    Data        bson.Raw `bson:"data"`
}

// RecordStore keeps aggregate snapshots. Each write and the envelopes it
// produced are committed in one transaction, so the server must run as a
// replica set.
type RecordStore struct {
    client *mongo.Client
    db     *mongo.Database
    events *EventStore
}

func NewRecordStore(client *mongo.Client, dbName string) *RecordStore {
    db := client.Database(dbName)
    return &RecordStore{
        client: client,
        db:     db,
        events: NewEventStore(db),
    }
}

func (r *RecordStore) Get(ctx context.Context, recordType string, id string) (aggregates.Record, error) {
    result := r.collection().FindOne(ctx, bson.M{"_id": documentID(recordType, id)})
    var recordBSON RecordBSON
    err := result.Decode(&recordBSON)
    if errors.Is(err, mongo.ErrNoDocuments) {
        return aggregates.Record{}, fmt.Errorf("%s %s: %w", recordType, id, shared.ErrNotFound)
    }
    if err != nil {
        return aggregates.Record{}, fmt.Errorf("failed finding %s %s: %w", recordType, id, err)
    }
    return toRecord(recordBSON)
}

func (r *RecordStore) Find(ctx context.Context, recordType string, filter aggregates.Filter) ([]aggregates.Record, error) {
    query := dataFilter(filter)
    query["type"] = recordType
    cursor, err := r.collection().Find(ctx, query, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
    if err != nil {
        return nil, fmt.Errorf("failed finding %s records: %w", recordType, err)
    }
    defer cursor.Close(ctx)
    var records []aggregates.Record
    for cursor.Next(ctx) {
        var recordBSON RecordBSON
        if err := cursor.Decode(&recordBSON); err != nil {
            return nil, fmt.Errorf("failed decoding mongodb result: %w", err)
        }
        record, err := toRecord(recordBSON)
        if err != nil {
            return nil, err
        }
        records = append(records, record)
    }
    return records, cursor.Err()
}

func (r *RecordStore) Create(ctx context.Context, record aggregates.Record, envelopes []eventstore.Envelope) error {
    data, err := toDocument(record.Data)
    if err != nil {
        return err
    }
    return r.inTransaction(ctx, func(ctx context.Context) error {
        _, err := r.collection().InsertOne(ctx, bson.M{
            "_id":          documentID(record.Type, record.ID),
            "type":         record.Type,
            "id":           record.ID,
            "lock_version": record.LockVersion,
            "data":         data,
        })
        if mongo.IsDuplicateKeyError(err) {
            return fmt.Errorf("%s %s: %w", record.Type, record.ID, shared.ErrAlreadyExists)
        }
        if err != nil {
            return fmt.Errorf("failed inserting %s %s: %w", record.Type, record.ID, err)
        }
        return r.events.Append(ctx, envelopes...)
    })
}

func (r *RecordStore) Update(ctx context.Context, record aggregates.Record, envelopes []eventstore.Envelope) error {
    data, err := toDocument(record.Data)
    if err != nil {
        return err
    }
    return r.inTransaction(ctx, func(ctx context.Context) error {
        updateResult, err := r.collection().UpdateOne(
            ctx,
            bson.M{
                "_id":          documentID(record.Type, record.ID),
                "lock_version": record.LockVersion - 1,
            },
            bson.M{
                "$set": bson.M{
                    "lock_version": record.LockVersion,
                    "data":         data,
                },
            },
        )
        if err != nil {
            return fmt.Errorf("failed updating %s %s: %w", record.Type, record.ID, err)
        }
        if updateResult.MatchedCount == 0 {
            return r.checkVersion(ctx, record)
        }
        return r.events.Append(ctx, envelopes...)
    })
}

// checkVersion explains why a conditional update matched nothing.
func (r *RecordStore) checkVersion(ctx context.Context, record aggregates.Record) error {
    stored, err := r.Get(ctx, record.Type, record.ID)
    if err != nil {
        return err
    }
    return fmt.Errorf(
        "%s %s is at version %d, update expected %d: %w",
        record.Type, record.ID, stored.LockVersion, record.LockVersion-1, shared.ErrConcurrencyConflict,
    )
}

func (r *RecordStore) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
    session, err := r.client.StartSession()
    if err != nil {
        return fmt.Errorf("failed starting mongodb session: %w", err)
    }
    defer session.EndSession(ctx)
    _, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
        return nil, fn(ctx)
    })
    return err
}

func (r *RecordStore) collection() *mongo.Collection {
    return r.db.Collection(RecordsCollection)
}

func toRecord(recordBSON RecordBSON) (aggregates.Record, error) {
    data, err := fromDocument(recordBSON.Data)
    if err != nil {
        return aggregates.Record{}, err
    }
    return aggregates.Record{
        Type:        recordBSON.Type,
        ID:          recordBSON.ID,
        LockVersion: recordBSON.LockVersion,
        Data:        data,
    }, nil
}
