package mongodb

import (
    "context"
    "errors"
    "fmt"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/projection"

    "go.mongodb.org/mongo-driver/v2/bson"
    "go.mongodb.org/mongo-driver/v2/mongo"
    "go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ projection.ReplicaStore = (*ReplicaStore)(nil)

type ReplicaBSON struct {
    DocumentID          string   `bson:"_id"`
    Type                string   `bson:"type"`
    ID                  string   `bson:"id"`
    LastAppliedSequence uint64   `bson:"last_applied_sequence"`
    Data                bson.Raw `bson:"data"`
}

type ReplicaStore struct {
    db *mongo.Database
}

func NewReplicaStore(client *mongo.Client, dbName string) *ReplicaStore {
    return &ReplicaStore{db: client.Database(dbName)}
}

func (r *ReplicaStore) Get(ctx context.Context, replicaType string, id string) (projection.Replica, error) {
    var replicaBSON ReplicaBSON
    err := r.collection().FindOne(ctx, bson.M{"_id": documentID(replicaType, id)}).Decode(&replicaBSON)
    if errors.Is(err, mongo.ErrNoDocuments) {
        return projection.Replica{}, fmt.Errorf("%s %s: %w", replicaType, id, shared.ErrNotFound)
    }
    if err != nil {
        return projection.Replica{}, fmt.Errorf("failed finding %s %s: %w", replicaType, id, err)
    }
    return toReplica(replicaBSON)
}

func (r *ReplicaStore) Find(ctx context.Context, replicaType string, filter aggregates.Filter) ([]projection.Replica, error) {
    query := dataFilter(filter)
    query["type"] = replicaType
    cursor, err := r.collection().Find(ctx, query, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
    if err != nil {
        return nil, fmt.Errorf("failed finding %s replicas: %w", replicaType, err)
    }
    defer cursor.Close(ctx)
    var replicas []projection.Replica
    for cursor.Next(ctx) {
        var replicaBSON ReplicaBSON
        if err := cursor.Decode(&replicaBSON); err != nil {
            return nil, fmt.Errorf("failed decoding mongodb result: %w", err)
        }
        replica, err := toReplica(replicaBSON)
        if err != nil {
            return nil, err
        }
        replicas = append(replicas, replica)
    }
    return replicas, cursor.Err()
}

func (r *ReplicaStore) Put(ctx context.Context, replica projection.Replica, previousSequence uint64, existed bool) error {
    data, err := toDocument(replica.Data)
    if err != nil {
        return err
    }
    if !existed {
        _, err := r.collection().InsertOne(ctx, bson.M{
            "_id":                   documentID(replica.Type, replica.ID),
            "type":                  replica.Type,
            "id":                    replica.ID,
            "last_applied_sequence": replica.LastAppliedSequence,
            "data":                  data,
        })
        if mongo.IsDuplicateKeyError(err) {
            return fmt.Errorf("%s %s was created concurrently: %w", replica.Type, replica.ID, shared.ErrConcurrencyConflict)
        }
        if err != nil {
            return fmt.Errorf("failed inserting %s %s: %w", replica.Type, replica.ID, err)
        }
        return nil
    }
    updateResult, err := r.collection().UpdateOne(
        ctx,
        bson.M{
            "_id":                   documentID(replica.Type, replica.ID),
            "last_applied_sequence": previousSequence,
        },
        bson.M{
            "$set": bson.M{
                "last_applied_sequence": replica.LastAppliedSequence,
                "data":                  data,
            },
        },
    )
    if err != nil {
        return fmt.Errorf("failed updating %s %s: %w", replica.Type, replica.ID, err)
    }
    if updateResult.MatchedCount == 0 {
        return fmt.Errorf("%s %s changed concurrently: %w", replica.Type, replica.ID, shared.ErrConcurrencyConflict)
    }
    return nil
}

func (r *ReplicaStore) collection() *mongo.Collection {
    return r.db.Collection(ReplicasCollection)
}

func toReplica(replicaBSON ReplicaBSON) (projection.Replica, error) {
    data, err := fromDocument(replicaBSON.Data)
    if err != nil {
        return projection.Replica{}, err
    }
    return projection.Replica{
        Type:                replicaBSON.Type,
        ID:                  replicaBSON.ID,
        LastAppliedSequence: replicaBSON.LastAppliedSequence,
        Data:                data,
    }, nil
}
