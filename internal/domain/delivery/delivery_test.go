package delivery

import (
    "testing"
    "time"

    "github.com/walletera/food-delivery/internal/domain/shared"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

var (
    now            = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
    pickupAddress  = shared.Address{Street1: "1 Main Street", City: "Oakland", State: "CA", Zip: "94611"}
    dropoffAddress = shared.Address{Street1: "9 Amazing View", City: "Oakland", State: "CA", Zip: "94612"}
)

func TestDeliveryLifecycle(t *testing.T) {
    delivery, created := Create("order-1", "restaurant-1", pickupAddress, dropoffAddress)
    assert.Equal(t, Pending, delivery.State)
    assert.Equal(t, "order-1", created.DeliveryID)

    _, err := delivery.PickUp(now)
    require.ErrorIs(t, err, shared.ErrUnsupportedStateTransition)

    scheduled, err := delivery.Schedule(now.Add(time.Hour), "courier-1")
    require.NoError(t, err)
    assert.Equal(t, Scheduled, delivery.State)
    assert.Equal(t, "courier-1", scheduled.CourierID)
    assert.Equal(t, "courier-1", delivery.AssignedCourier)

    _, err = delivery.Schedule(now.Add(time.Hour), "courier-2")
    require.ErrorIs(t, err, shared.ErrUnsupportedStateTransition)
    assert.Equal(t, "courier-1", delivery.AssignedCourier)

    pickedUp, err := delivery.PickUp(now.Add(time.Hour))
    require.NoError(t, err)
    assert.Equal(t, PickedUp, delivery.State)
    assert.Equal(t, now.Add(time.Hour), pickedUp.PickedUpAt.Time)

    _, err = delivery.Cancel()
    require.ErrorIs(t, err, shared.ErrUnsupportedStateTransition)

    delivered, err := delivery.Deliver(now.Add(90 * time.Minute))
    require.NoError(t, err)
    assert.Equal(t, Delivered, delivery.State)
    assert.Equal(t, "courier-1", delivered.CourierID)
}

func TestCancelKeepsAssignedCourier(t *testing.T) {
    delivery, _ := Create("order-1", "restaurant-1", pickupAddress, dropoffAddress)
    _, err := delivery.Schedule(now, "courier-1")
    require.NoError(t, err)

    _, err = delivery.Cancel()
    require.NoError(t, err)
    assert.Equal(t, Cancelled, delivery.State)
    assert.Equal(t, "courier-1", delivery.AssignedCourier)
}

func TestCourierPlan(t *testing.T) {
    courier := CreateCourier("courier-1", true)

    courier.AddDelivery("order-1", pickupAddress, now, dropoffAddress, now.Add(DropoffDelay))
    courier.AddDelivery("order-1", pickupAddress, now, dropoffAddress, now.Add(DropoffDelay))
    courier.AddDelivery("order-2", pickupAddress, now, dropoffAddress, now.Add(DropoffDelay))
    require.Len(t, courier.Plan, 4)
    assert.Len(t, courier.ActionsFor("order-1"), 2)

    courier.Complete("order-1", ActionPickup, ActionPickedUp, now.Add(time.Minute))
    require.Len(t, courier.Done, 1)
    assert.Equal(t, ActionPickedUp, courier.Done[0].Type)
    assert.Equal(t, pickupAddress, courier.Done[0].Address)
    assert.Equal(t, []Action{{Type: ActionDropoff, DeliveryID: "order-1", Address: dropoffAddress, Time: shared.NewTimestamp(now.Add(DropoffDelay))}}, courier.ActionsFor("order-1"))

    courier.RemoveDelivery("order-2")
    assert.Len(t, courier.Plan, 1)
    assert.Empty(t, courier.ActionsFor("order-2"))
}

func TestRandomChooser(t *testing.T) {
    couriers := []*Courier{CreateCourier("c-3", true), CreateCourier("c-1", true), CreateCourier("c-2", true)}
    reversed := []*Courier{couriers[2], couriers[1], couriers[0]}

    first := NewRandomChooser(7)
    second := NewRandomChooser(7)
    for i := 0; i < 10; i++ {
        a, err := first.Choose(couriers)
        require.NoError(t, err)
        b, err := second.Choose(reversed)
        require.NoError(t, err)
        assert.Equal(t, a.ID, b.ID)
    }

    _, err := first.Choose(nil)
    require.ErrorIs(t, err, ErrNoAvailableCourier)
}

func TestDeliverySnapshot(t *testing.T) {
    delivery, _ := Create("order-1", "restaurant-1", pickupAddress, dropoffAddress)
    _, err := delivery.Schedule(now, "courier-1")
    require.NoError(t, err)

    data, err := delivery.MarshalSnapshot()
    require.NoError(t, err)
    restored := New()
    require.NoError(t, restored.UnmarshalSnapshot(data))
    assert.Equal(t, delivery.State, restored.State)
    assert.Equal(t, delivery.AssignedCourier, restored.AssignedCourier)
    assert.Equal(t, delivery.DeliveryAddress, restored.DeliveryAddress)
    assert.True(t, delivery.ReadyBy.Equal(*restored.ReadyBy))
    assert.Nil(t, restored.PickupTime)
}
