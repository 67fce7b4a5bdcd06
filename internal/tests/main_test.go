package tests

import (
    "context"
    "fmt"
    "testing"
    "time"

    "github.com/testcontainers/testcontainers-go"
    "github.com/testcontainers/testcontainers-go/wait"
    "github.com/walletera/eventskit/rabbitmq"
    "go.mongodb.org/mongo-driver/v2/bson"
    "go.mongodb.org/mongo-driver/v2/mongo"
    "go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
    containersStartTimeout       = 90 * time.Second
    startupTimeout               = 20 * time.Second
    containersTerminationTimeout = 10 * time.Second
)

func TestMain(m *testing.M) {
    ctx, cancelCtx := context.WithTimeout(context.Background(), containersStartTimeout)
    defer cancelCtx()

    stopRabbitMQ, err := startRabbitMQContainer(ctx)
    if err != nil {
        panic(err)
    }
    defer func() {
        err := stopRabbitMQ()
        if err != nil {
            panic(err)
        }
    }()

    stopMongo, err := startMongoDBContainer(ctx)
    if err != nil {
        panic(err)
    }
    defer func() {
        err = stopMongo()
        if err != nil {
            panic(err)
        }
    }()

    m.Run()
}

// startMongoDBContainer runs a single node replica set; the record store
// writes in transactions.
func startMongoDBContainer(ctx context.Context) (func() error, error) {
    req := testcontainers.ContainerRequest{
        Image:        "mongodb/mongodb-community-server",
        Name:         "food-delivery-mongodb",
        ExposedPorts: []string{"27017:27017"},
        Cmd:          []string{"--replSet", "rs0", "--bind_ip_all"},
        WaitingFor:   wait.NewExecStrategy([]string{"mongosh", "--eval", "show dbs"}).WithStartupTimeout(startupTimeout),
        LogConsumerCfg: &testcontainers.LogConsumerConfig{
            Consumers: []testcontainers.LogConsumer{NewContainerLogConsumer("mongodb")},
        },
    }
    mongodbC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
        ContainerRequest: req,
        Started:          true,
    })
    if err != nil {
        return nil, fmt.Errorf("error creating mongodb container: %w", err)
    }
    terminate := func() error {
        terminationCtx, terminationCtxCancel := context.WithTimeout(context.Background(), containersTerminationTimeout)
        defer terminationCtxCancel()
        return mongodbC.Terminate(terminationCtx)
    }

    exitCode, _, err := mongodbC.Exec(ctx, []string{"mongosh", "--eval", "rs.initiate({_id: 'rs0', members: [{_id: 0, host: 'localhost:27017'}]})"})
    if err != nil || exitCode != 0 {
        terminate()
        return nil, fmt.Errorf("failed initiating mongodb replica set (exit code %d): %v", exitCode, err)
    }
    err = waitForPrimary(ctx)
    if err != nil {
        terminate()
        return nil, err
    }
    return terminate, nil
}

func waitForPrimary(ctx context.Context) error {
    client, err := mongo.Connect(options.Client().ApplyURI(mongodbURL))
    if err != nil {
        return err
    }
    defer client.Disconnect(context.Background())
    for {
        var hello struct {
            IsWritablePrimary bool `bson:"isWritablePrimary"`
        }
        err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
        if err == nil && hello.IsWritablePrimary {
            return nil
        }
        select {
        case <-ctx.Done():
            return fmt.Errorf("mongodb replica set has no primary: %w", ctx.Err())
        case <-time.After(500 * time.Millisecond):
        }
    }
}

func startRabbitMQContainer(ctx context.Context) (func() error, error) {
    req := testcontainers.ContainerRequest{
        Image: "rabbitmq:3.8.0-management",
        Name:  "food-delivery-rabbitmq",
        User:  "rabbitmq",
        ExposedPorts: []string{
            fmt.Sprintf("%d:%d", rabbitmq.DefaultPort, rabbitmq.DefaultPort),
            fmt.Sprintf("%d:%d", rabbitmq.ManagementUIPort, rabbitmq.ManagementUIPort),
        },
        WaitingFor: wait.NewExecStrategy([]string{"rabbitmqadmin", "list", "queues"}).WithStartupTimeout(startupTimeout),
        LogConsumerCfg: &testcontainers.LogConsumerConfig{
            Consumers: []testcontainers.LogConsumer{NewContainerLogConsumer("rabbitmq")},
        },
    }
    rabbitmqC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
        ContainerRequest: req,
        Started:          true,
    })
    if err != nil {
        return nil, fmt.Errorf("error creating rabbitmq container: %w", err)
    }

    return func() error {
        terminationCtx, terminationCtxCancel := context.WithTimeout(context.Background(), containersTerminationTimeout)
        defer terminationCtxCancel()
        err := rabbitmqC.Terminate(terminationCtx)
        if err != nil {
            return fmt.Errorf("failed terminating rabbitmq container: %w", err)
        }
        return nil
    }, nil
}
