package mongodb

import (
    "context"
    "encoding/json"
    "fmt"

    "go.mongodb.org/mongo-driver/v2/bson"
    "go.mongodb.org/mongo-driver/v2/mongo"
    "go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
    RecordsCollection   = "records"
    ReplicasCollection  = "replicas"
    EventsCollection    = "events"
    SequencesCollection = "sequences"
)

// Connect opens a client using the stable API version 1.
func Connect(url string) (*mongo.Client, error) {
    serverAPI := options.ServerAPI(options.ServerAPIVersion1)
    opts := options.Client().ApplyURI(url).SetServerAPIOptions(serverAPI)
    client, err := mongo.Connect(opts)
    if err != nil {
        return nil, fmt.Errorf("error connecting to mongodb: %w", err)
    }
    return client, nil
}

// EnsureIndexes creates the indexes the stores rely on for uniqueness and
// stream reads.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
    _, err := db.Collection(EventsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
        {
            Keys:    bson.D{{Key: "aggregate", Value: 1}, {Key: "event_id", Value: 1}},
            Options: options.Index().SetUnique(true),
        },
        {
            Keys: bson.D{{Key: "aggregate", Value: 1}, {Key: "aggregate_id", Value: 1}, {Key: "event_id", Value: 1}},
        },
    })
    if err != nil {
        return fmt.Errorf("failed creating events indexes: %w", err)
    }
    _, err = db.Collection(RecordsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
        Keys: bson.D{{Key: "type", Value: 1}, {Key: "id", Value: 1}},
    })
    if err != nil {
        return fmt.Errorf("failed creating records index: %w", err)
    }
    _, err = db.Collection(ReplicasCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
        Keys: bson.D{{Key: "type", Value: 1}, {Key: "id", Value: 1}},
    })
    if err != nil {
        return fmt.Errorf("failed creating replicas index: %w", err)
    }
    return nil
}

func documentID(kind string, id string) string {
    return kind + "/" + id
}

// toDocument turns a json object into a bson document so its fields can be
// queried as data.<field>.
func toDocument(data json.RawMessage) (bson.D, error) {
    var document bson.D
    if err := bson.UnmarshalExtJSON(data, false, &document); err != nil {
        return nil, fmt.Errorf("failed converting json to bson: %w", err)
    }
    return document, nil
}

func fromDocument(document bson.Raw) (json.RawMessage, error) {
    data, err := bson.MarshalExtJSON(document, false, false)
    if err != nil {
        return nil, fmt.Errorf("failed converting bson to json: %w", err)
    }
    return data, nil
}

func dataFilter(filter map[string]any) bson.M {
    query := bson.M{}
    for field, value := range filter {
        query["data."+field] = value
    }
    return query
}
