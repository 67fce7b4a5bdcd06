package consumer

import (
    "encoding/json"
    "fmt"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
)

const snapshotVersion = 1

var (
    ErrConsumerNotFound           = shared.NewError(shared.ErrNotFound, "consumer not found")
    ErrConsumerVerificationFailed = shared.NewError(shared.ErrBusinessRuleViolation, "consumer verification failed")
)

type Consumer struct {
    aggregates.Base
    Name shared.PersonName
    // OrderLimit caps the total of a single order. A zero limit means no cap.
    OrderLimit shared.Money
}

func New() *Consumer {
    return &Consumer{}
}

func Create(id string, name shared.PersonName, orderLimit shared.Money) (*Consumer, events.ConsumerCreated) {
    c := &Consumer{
        Base:       aggregates.Base{ID: id},
        Name:       name,
        OrderLimit: orderLimit,
    }
    return c, events.ConsumerCreated{ConsumerID: id, Name: name}
}

func (c *Consumer) ValidateOrder(orderTotal shared.Money) error {
    if c.OrderLimit.IsZero() {
        return nil
    }
    exceeds, err := c.OrderLimit.LessThan(orderTotal)
    if err != nil {
        return err
    }
    if exceeds {
        return fmt.Errorf("%w: order total %s exceeds limit %s", ErrConsumerVerificationFailed, orderTotal, c.OrderLimit)
    }
    return nil
}

func (c *Consumer) AggregateType() string {
    return events.AggregateConsumer
}

type snapshot struct {
    aggregates.SnapshotHeader
    ID         string            `json:"id"`
    Name       shared.PersonName `json:"name"`
    OrderLimit shared.Money      `json:"order_limit"`
}

func (c *Consumer) MarshalSnapshot() ([]byte, error) {
    return json.Marshal(snapshot{
        SnapshotHeader: aggregates.SnapshotHeader{SchemaVersion: snapshotVersion},
        ID:             c.ID,
        Name:           c.Name,
        OrderLimit:     c.OrderLimit,
    })
}

func (c *Consumer) UnmarshalSnapshot(data []byte) error {
    var s snapshot
    if err := aggregates.UnmarshalSnapshot(data, &s, snapshotVersion); err != nil {
        return err
    }
    c.ID = s.ID
    c.Name = s.Name
    c.OrderLimit = s.OrderLimit
    return nil
}
