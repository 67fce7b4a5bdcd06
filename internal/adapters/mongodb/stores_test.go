package mongodb

import (
    "context"
    "fmt"
    "testing"
    "time"

    "github.com/walletera/food-delivery/internal/adapters/storetest"

    "github.com/stretchr/testify/require"
    "github.com/testcontainers/testcontainers-go"
    "github.com/testcontainers/testcontainers-go/wait"
    "go.mongodb.org/mongo-driver/v2/bson"
    "go.mongodb.org/mongo-driver/v2/mongo"
)

const (
    testDatabase      = "food-delivery-test"
    replicaSetTimeout = 30 * time.Second
)

// startMongoDB runs a single node replica set; record writes need
// transactions.
func startMongoDB(t *testing.T) *mongo.Client {
    t.Helper()
    if testing.Short() {
        t.Skip("mongodb container test skipped in short mode")
    }
    testcontainers.SkipIfProviderIsNotHealthy(t)

    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
    defer cancel()

    mongodbC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
        ContainerRequest: testcontainers.ContainerRequest{
            Image:        "mongodb/mongodb-community-server",
            ExposedPorts: []string{"27017/tcp"},
            Cmd:          []string{"--replSet", "rs0", "--bind_ip_all"},
            WaitingFor:   wait.NewExecStrategy([]string{"mongosh", "--eval", "show dbs"}).WithStartupTimeout(20 * time.Second),
        },
        Started: true,
    })
    require.NoError(t, err)
    t.Cleanup(func() {
        require.NoError(t, mongodbC.Terminate(context.Background()))
    })

    exitCode, _, err := mongodbC.Exec(ctx, []string{"mongosh", "--eval", "rs.initiate({_id: 'rs0', members: [{_id: 0, host: 'localhost:27017'}]})"})
    require.NoError(t, err)
    require.Zero(t, exitCode)

    host, err := mongodbC.Host(ctx)
    require.NoError(t, err)
    port, err := mongodbC.MappedPort(ctx, "27017")
    require.NoError(t, err)

    client, err := Connect(fmt.Sprintf("mongodb://%s:%s/?directConnection=true", host, port.Port()))
    require.NoError(t, err)
    t.Cleanup(func() { client.Disconnect(context.Background()) })

    require.Eventually(t, func() bool {
        var hello struct {
            IsWritablePrimary bool `bson:"isWritablePrimary"`
        }
        err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
        return err == nil && hello.IsWritablePrimary
    }, replicaSetTimeout, 500*time.Millisecond)

    require.NoError(t, EnsureIndexes(ctx, client.Database(testDatabase)))
    return client
}

func TestMongoDBStores(t *testing.T) {
    client := startMongoDB(t)

    t.Run("sequencer", func(t *testing.T) {
        storetest.RunSequencer(t, NewSequencer(client, testDatabase))
    })
    t.Run("event store", func(t *testing.T) {
        storetest.RunEventStore(t, NewEventStore(client.Database(testDatabase)))
    })
    t.Run("record store", func(t *testing.T) {
        storetest.RunRecordStore(t, NewRecordStore(client, testDatabase), NewEventStore(client.Database(testDatabase)))
    })
    t.Run("replica store", func(t *testing.T) {
        storetest.RunReplicaStore(t, NewReplicaStore(client, testDatabase))
    })
}
