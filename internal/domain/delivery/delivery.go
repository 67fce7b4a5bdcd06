package delivery

import (
    "encoding/json"
    "time"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
)

type State string

const (
    Pending   State = "PENDING"
    Scheduled State = "SCHEDULED"
    PickedUp  State = "PICKEDUP"
    Delivered State = "DELIVERED"
    Cancelled State = "CANCELLED"
)

const (
    snapshotVersion = 1
    // DropoffDelay is added to ready_by to plan the dropoff.
    DropoffDelay = 30 * time.Minute
)

var (
    ErrDeliveryNotFound = shared.NewError(shared.ErrNotFound, "delivery not found")
    ErrCourierNotFound  = shared.NewError(shared.ErrNotFound, "courier not found")
)

// Delivery is created for every order. Its id is the order id.
type Delivery struct {
    aggregates.Base
    State           State
    RestaurantID    string
    PickupAddress   shared.Address
    DeliveryAddress shared.Address
    ReadyBy         *time.Time
    // AssignedCourier is kept after cancellation so the plan of that courier
    // can still be cleaned up.
    AssignedCourier string
    PickupTime      *time.Time
    DeliveryTime    *time.Time
}

func New() *Delivery {
    return &Delivery{}
}

func Create(orderID string, restaurantID string, pickupAddress shared.Address, deliveryAddress shared.Address) (*Delivery, events.DeliveryCreated) {
    d := &Delivery{
        Base:            aggregates.Base{ID: orderID},
        State:           Pending,
        RestaurantID:    restaurantID,
        PickupAddress:   pickupAddress,
        DeliveryAddress: deliveryAddress,
    }
    return d, events.DeliveryCreated{
        DeliveryID:      orderID,
        RestaurantID:    restaurantID,
        PickupAddress:   pickupAddress,
        DeliveryAddress: deliveryAddress,
    }
}

func (d *Delivery) Schedule(readyBy time.Time, courierID string) (events.DeliveryScheduled, error) {
    if err := d.requireState("schedule", Pending); err != nil {
        return events.DeliveryScheduled{}, err
    }
    readyBy = readyBy.UTC().Truncate(time.Microsecond)
    d.State = Scheduled
    d.ReadyBy = &readyBy
    d.AssignedCourier = courierID
    return events.DeliveryScheduled{
        DeliveryID: d.ID,
        CourierID:  courierID,
        ReadyBy:    shared.NewTimestamp(readyBy),
    }, nil
}

func (d *Delivery) Cancel() (events.DeliveryCancelled, error) {
    if err := d.requireState("cancel", Pending, Scheduled); err != nil {
        return events.DeliveryCancelled{}, err
    }
    d.State = Cancelled
    return events.DeliveryCancelled{DeliveryID: d.ID}, nil
}

func (d *Delivery) PickUp(now time.Time) (events.DeliveryPickedUp, error) {
    if err := d.requireState("pick_up", Scheduled); err != nil {
        return events.DeliveryPickedUp{}, err
    }
    pickedUpAt := now.UTC().Truncate(time.Microsecond)
    d.State = PickedUp
    d.PickupTime = &pickedUpAt
    return events.DeliveryPickedUp{
        DeliveryID: d.ID,
        CourierID:  d.AssignedCourier,
        PickedUpAt: shared.NewTimestamp(pickedUpAt),
    }, nil
}

func (d *Delivery) Deliver(now time.Time) (events.DeliveryDelivered, error) {
    if err := d.requireState("deliver", PickedUp); err != nil {
        return events.DeliveryDelivered{}, err
    }
    deliveredAt := now.UTC().Truncate(time.Microsecond)
    d.State = Delivered
    d.DeliveryTime = &deliveredAt
    return events.DeliveryDelivered{
        DeliveryID:  d.ID,
        CourierID:   d.AssignedCourier,
        DeliveredAt: shared.NewTimestamp(deliveredAt),
    }, nil
}

func (d *Delivery) requireState(operation string, allowed ...State) error {
    for _, state := range allowed {
        if d.State == state {
            return nil
        }
    }
    return shared.UnsupportedTransition("delivery", operation, string(d.State))
}

func (d *Delivery) AggregateType() string {
    return events.AggregateDelivery
}

type snapshot struct {
    aggregates.SnapshotHeader
    ID              string            `json:"id"`
    State           State             `json:"state"`
    RestaurantID    string            `json:"restaurant_id"`
    PickupAddress   shared.Address    `json:"pickup_address"`
    DeliveryAddress shared.Address    `json:"delivery_address"`
    ReadyBy         *shared.Timestamp `json:"ready_by,omitempty"`
    AssignedCourier string            `json:"assigned_courier,omitempty"`
    PickupTime      *shared.Timestamp `json:"pickup_time,omitempty"`
    DeliveryTime    *shared.Timestamp `json:"delivery_time,omitempty"`
}

func (d *Delivery) MarshalSnapshot() ([]byte, error) {
    return json.Marshal(snapshot{
        SnapshotHeader:  aggregates.SnapshotHeader{SchemaVersion: snapshotVersion},
        ID:              d.ID,
        State:           d.State,
        RestaurantID:    d.RestaurantID,
        PickupAddress:   d.PickupAddress,
        DeliveryAddress: d.DeliveryAddress,
        ReadyBy:         toTimestamp(d.ReadyBy),
        AssignedCourier: d.AssignedCourier,
        PickupTime:      toTimestamp(d.PickupTime),
        DeliveryTime:    toTimestamp(d.DeliveryTime),
    })
}

func (d *Delivery) UnmarshalSnapshot(data []byte) error {
    var s snapshot
    if err := aggregates.UnmarshalSnapshot(data, &s, snapshotVersion); err != nil {
        return err
    }
    d.ID = s.ID
    d.State = s.State
    d.RestaurantID = s.RestaurantID
    d.PickupAddress = s.PickupAddress
    d.DeliveryAddress = s.DeliveryAddress
    d.ReadyBy = fromTimestamp(s.ReadyBy)
    d.AssignedCourier = s.AssignedCourier
    d.PickupTime = fromTimestamp(s.PickupTime)
    d.DeliveryTime = fromTimestamp(s.DeliveryTime)
    return nil
}

func toTimestamp(t *time.Time) *shared.Timestamp {
    if t == nil {
        return nil
    }
    ts := shared.NewTimestamp(*t)
    return &ts
}

func fromTimestamp(ts *shared.Timestamp) *time.Time {
    if ts == nil {
        return nil
    }
    t := ts.Time
    return &t
}
