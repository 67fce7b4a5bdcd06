package mongodb

import (
    "context"
    "fmt"

    "github.com/walletera/food-delivery/internal/eventstore"

    "go.mongodb.org/mongo-driver/v2/bson"
    "go.mongodb.org/mongo-driver/v2/mongo"
    "go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ eventstore.Sequencer = (*Sequencer)(nil)

// Sequencer keeps one counter document per stream key and increments it
// with an upserting $inc.
type Sequencer struct {
    db *mongo.Database
}

func NewSequencer(client *mongo.Client, dbName string) *Sequencer {
    return &Sequencer{db: client.Database(dbName)}
}

func (s *Sequencer) Next(ctx context.Context, streamKey string) (uint64, error) {
    var counter struct {
        Value int64 `bson:"value"`
    }
    var err error
    // Two upserts racing on a missing counter may both try the insert; the
    // loser sees a duplicate key and increments the existing document.
    for attempt := 0; attempt < 2; attempt++ {
        err = s.db.Collection(SequencesCollection).FindOneAndUpdate(
            ctx,
            bson.M{"_id": streamKey},
            bson.M{"$inc": bson.M{"value": int64(1)}},
            options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
        ).Decode(&counter)
        if !mongo.IsDuplicateKeyError(err) {
            break
        }
    }
    if err != nil {
        return 0, fmt.Errorf("failed incrementing sequence %s: %w", streamKey, err)
    }
    return uint64(counter.Value), nil
}
