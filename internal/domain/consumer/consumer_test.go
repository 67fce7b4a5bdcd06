package consumer_test

import (
    "context"
    "testing"

    "github.com/walletera/food-delivery/internal/domain/consumer"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
    "github.com/walletera/food-delivery/internal/testkit"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestValidateOrderForConsumer(t *testing.T) {
    ctx := context.Background()
    tests := []struct {
        name       string
        orderLimit int64
        total      int64
        wantErr    error
    }{
        {name: "no limit", total: 1_000_000},
        {name: "at the limit", orderLimit: 5100, total: 5100},
        {name: "over the limit", orderLimit: 5000, total: 5100, wantErr: consumer.ErrConsumerVerificationFailed},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            k := testkit.New(t)
            consumerID := k.CreateConsumer(t, tt.orderLimit, 0)

            err := k.Consumers.ValidateOrderForConsumer(ctx, consumerID, shared.NewMoney(tt.total, testkit.Currency))
            if tt.wantErr == nil {
                require.NoError(t, err)
                return
            }
            require.ErrorIs(t, err, tt.wantErr)
            require.ErrorIs(t, err, shared.ErrBusinessRuleViolation)
        })
    }
}

func TestCreateConsumer(t *testing.T) {
    ctx := context.Background()
    k := testkit.New(t)
    name := shared.PersonName{FirstName: "John", LastName: "Doe"}

    created, err := k.Consumers.CreateConsumer(ctx, name, shared.Money{})
    require.NoError(t, err)
    found, err := k.Consumers.FindByID(ctx, created.ID)
    require.NoError(t, err)
    assert.Equal(t, name, found.Name)
    assert.True(t, found.OrderLimit.IsZero())
    assert.Equal(t, []string{events.ConsumerCreatedType}, k.EventTypes(t, events.AggregateConsumer, created.ID))

    err = k.Consumers.ValidateOrderForConsumer(ctx, "nobody", shared.NewMoney(1, testkit.Currency))
    require.ErrorIs(t, err, consumer.ErrConsumerNotFound)
}
