package delivery

import (
    "encoding/json"
    "time"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
)

type ActionType string

const (
    ActionPickup    ActionType = "PICKUP"
    ActionDropoff   ActionType = "DROPOFF"
    ActionPickedUp  ActionType = "PICKEDUP"
    ActionDelivered ActionType = "DELIVERED"
)

type Action struct {
    Type       ActionType       `json:"action_type"`
    DeliveryID string           `json:"delivery_id"`
    Address    shared.Address   `json:"address"`
    Time       shared.Timestamp `json:"time"`
}

// Courier holds the planned actions of a courier and the ones already done.
// Couriers do not emit events.
type Courier struct {
    aggregates.Base
    Available bool
    Plan      []Action
    Done      []Action
}

func NewCourier() *Courier {
    return &Courier{}
}

func CreateCourier(id string, available bool) *Courier {
    return &Courier{Base: aggregates.Base{ID: id}, Available: available}
}

// AddDelivery plans the pickup and dropoff of a delivery. Planning the same
// delivery twice keeps the existing actions.
func (c *Courier) AddDelivery(deliveryID string, pickupAddress shared.Address, pickupTime time.Time, dropoffAddress shared.Address, dropoffTime time.Time) {
    if len(c.ActionsFor(deliveryID)) > 0 {
        return
    }
    c.Plan = append(c.Plan,
        Action{Type: ActionPickup, DeliveryID: deliveryID, Address: pickupAddress, Time: shared.NewTimestamp(pickupTime)},
        Action{Type: ActionDropoff, DeliveryID: deliveryID, Address: dropoffAddress, Time: shared.NewTimestamp(dropoffTime)},
    )
}

func (c *Courier) RemoveDelivery(deliveryID string) {
    plan := c.Plan[:0:0]
    for _, action := range c.Plan {
        if action.DeliveryID != deliveryID {
            plan = append(plan, action)
        }
    }
    c.Plan = plan
}

// Complete moves the planned action of the given type to the done list as
// doneType.
func (c *Courier) Complete(deliveryID string, planned ActionType, doneType ActionType, at time.Time) {
    plan := c.Plan[:0:0]
    for _, action := range c.Plan {
        if action.DeliveryID == deliveryID && action.Type == planned {
            c.Done = append(c.Done, Action{
                Type:       doneType,
                DeliveryID: deliveryID,
                Address:    action.Address,
                Time:       shared.NewTimestamp(at),
            })
            continue
        }
        plan = append(plan, action)
    }
    c.Plan = plan
}

func (c *Courier) ActionsFor(deliveryID string) []Action {
    var actions []Action
    for _, action := range c.Plan {
        if action.DeliveryID == deliveryID {
            actions = append(actions, action)
        }
    }
    return actions
}

func (c *Courier) AggregateType() string {
    return events.AggregateCourier
}

type courierSnapshot struct {
    aggregates.SnapshotHeader
    ID        string   `json:"id"`
    Available bool     `json:"available"`
    Plan      []Action `json:"plan"`
    Done      []Action `json:"done"`
}

func (c *Courier) MarshalSnapshot() ([]byte, error) {
    return json.Marshal(courierSnapshot{
        SnapshotHeader: aggregates.SnapshotHeader{SchemaVersion: snapshotVersion},
        ID:             c.ID,
        Available:      c.Available,
        Plan:           c.Plan,
        Done:           c.Done,
    })
}

func (c *Courier) UnmarshalSnapshot(data []byte) error {
    var s courierSnapshot
    if err := aggregates.UnmarshalSnapshot(data, &s, snapshotVersion); err != nil {
        return err
    }
    c.ID = s.ID
    c.Available = s.Available
    c.Plan = s.Plan
    c.Done = s.Done
    return nil
}
