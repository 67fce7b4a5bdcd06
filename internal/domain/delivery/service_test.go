package delivery_test

import (
    "context"
    "testing"
    "time"

    "github.com/walletera/food-delivery/internal/domain/delivery"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
    "github.com/walletera/food-delivery/internal/testkit"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

type deliveryTest struct {
    *testkit.Kit
    orderID string
}

// newDeliveryTest creates an order and hands its OrderCreated event to the
// delivery service.
func newDeliveryTest(t *testing.T) *deliveryTest {
    k := testkit.New(t)
    restaurantID := k.CreateRestaurant(t).ID
    created, err := k.Orders.CreateOrder(context.Background(), "consumer-1", restaurantID, testkit.LineItems(), testkit.DeliveryInformation())
    require.NoError(t, err)
    k.Deliver(t, events.AggregateOrder, k.DeliveryEvents)
    return &deliveryTest{Kit: k, orderID: created.ID}
}

// acceptTicket walks the kitchen ticket of the order to ACCEPTED.
func (d *deliveryTest) acceptTicket(t *testing.T, readyBy time.Time) {
    t.Helper()
    ctx := context.Background()
    found, err := d.Orders.FindByID(ctx, d.orderID)
    require.NoError(t, err)
    ticketID, err := d.Kitchen.CreateTicket(ctx, d.orderID, found.RestaurantID, []shared.TicketLineItem{{MenuID: "1", Quantity: 2}})
    require.NoError(t, err)
    _, err = d.Kitchen.ConfirmCreate(ctx, ticketID)
    require.NoError(t, err)
    _, err = d.Kitchen.Accept(ctx, ticketID, readyBy)
    require.NoError(t, err)
}

func (d *deliveryTest) delivery(t *testing.T) *delivery.Delivery {
    t.Helper()
    found, err := d.Deliveries.FindDelivery(context.Background(), d.orderID)
    require.NoError(t, err)
    return found
}

func TestOrderCreatedOpensDelivery(t *testing.T) {
    d := newDeliveryTest(t)

    found := d.delivery(t)
    assert.Equal(t, delivery.Pending, found.State)
    assert.Equal(t, "1 Main Street", found.PickupAddress.Street1)
    assert.Equal(t, testkit.DeliveryInformation().DeliveryAddress, found.DeliveryAddress)

    d.Deliver(t, events.AggregateOrder, d.DeliveryEvents)
    assert.Equal(t, []string{events.DeliveryCreatedType}, d.EventTypes(t, events.AggregateDelivery, d.orderID))
}

func TestAcceptedTicketSchedulesDelivery(t *testing.T) {
    ctx := context.Background()
    d := newDeliveryTest(t)
    for _, courierID := range []string{"courier-1", "courier-2", "courier-3"} {
        _, err := d.Deliveries.UpdateCourierAvailability(ctx, courierID, courierID != "courier-2")
        require.NoError(t, err)
    }
    readyBy := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
    d.acceptTicket(t, readyBy)

    d.Deliver(t, events.AggregateTicket, d.DeliveryEvents)

    scheduled := d.delivery(t)
    require.Equal(t, delivery.Scheduled, scheduled.State)
    assert.NotEqual(t, "courier-2", scheduled.AssignedCourier)
    assert.True(t, readyBy.Equal(*scheduled.ReadyBy))

    courier, err := d.Deliveries.FindCourier(ctx, scheduled.AssignedCourier)
    require.NoError(t, err)
    plan := courier.ActionsFor(d.orderID)
    require.Len(t, plan, 2)
    assert.Equal(t, delivery.ActionPickup, plan[0].Type)
    assert.True(t, readyBy.Equal(plan[0].Time.Time))
    assert.Equal(t, delivery.ActionDropoff, plan[1].Type)
    assert.True(t, readyBy.Add(delivery.DropoffDelay).Equal(plan[1].Time.Time))

    _, err = d.Deliveries.PickUp(ctx, d.orderID)
    require.NoError(t, err)
    delivered, err := d.Deliveries.Deliver(ctx, d.orderID)
    require.NoError(t, err)
    assert.Equal(t, delivery.Delivered, delivered.State)

    courier, err = d.Deliveries.FindCourier(ctx, scheduled.AssignedCourier)
    require.NoError(t, err)
    assert.Empty(t, courier.Plan)
    require.Len(t, courier.Done, 2)
    assert.Equal(t, delivery.ActionPickedUp, courier.Done[0].Type)
    assert.Equal(t, delivery.ActionDelivered, courier.Done[1].Type)
    assert.Equal(t, []string{
        events.DeliveryCreatedType,
        events.DeliveryScheduledType,
        events.DeliveryPickedUpType,
        events.DeliveryDeliveredType,
    }, d.EventTypes(t, events.AggregateDelivery, d.orderID))
}

func TestScheduleWithoutCouriers(t *testing.T) {
    ctx := context.Background()
    d := newDeliveryTest(t)
    _, err := d.Deliveries.UpdateCourierAvailability(ctx, "courier-1", false)
    require.NoError(t, err)

    err = d.Deliveries.ScheduleDelivery(ctx, d.orderID, time.Now().Add(time.Hour))
    require.ErrorIs(t, err, delivery.ErrNoAvailableCourier)
    assert.Equal(t, delivery.Pending, d.delivery(t).State)
}

func TestCancelledTicketCancelsDelivery(t *testing.T) {
    ctx := context.Background()
    d := newDeliveryTest(t)
    _, err := d.Deliveries.UpdateCourierAvailability(ctx, "courier-1", true)
    require.NoError(t, err)
    d.acceptTicket(t, time.Now().Add(time.Hour))
    _, err = d.Kitchen.BeginCancel(ctx, d.orderID)
    require.NoError(t, err)
    _, err = d.Kitchen.ConfirmCancel(ctx, d.orderID)
    require.NoError(t, err)

    d.Deliver(t, events.AggregateTicket, d.DeliveryEvents)

    cancelled := d.delivery(t)
    assert.Equal(t, delivery.Cancelled, cancelled.State)
    assert.Equal(t, "courier-1", cancelled.AssignedCourier)
    courier, err := d.Deliveries.FindCourier(ctx, "courier-1")
    require.NoError(t, err)
    assert.Empty(t, courier.Plan)
}

func TestEventsForMissingDeliveryAreRetryable(t *testing.T) {
    k := testkit.New(t)
    err := k.Deliveries.ScheduleDelivery(context.Background(), "unknown-order", time.Now().Add(time.Hour))
    require.ErrorIs(t, err, shared.ErrUnavailable)

    err = k.Deliveries.CancelDelivery(context.Background(), "unknown-order")
    require.ErrorIs(t, err, shared.ErrUnavailable)

    _, err = k.Deliveries.PickUp(context.Background(), "unknown-order")
    require.ErrorIs(t, err, delivery.ErrDeliveryNotFound)
}

func TestCourierAvailability(t *testing.T) {
    ctx := context.Background()
    k := testkit.New(t)

    created, err := k.Deliveries.UpdateCourierAvailability(ctx, "courier-1", true)
    require.NoError(t, err)
    assert.True(t, created.Available)

    updated, err := k.Deliveries.UpdateCourierAvailability(ctx, "courier-1", false)
    require.NoError(t, err)
    assert.False(t, updated.Available)
    assert.Equal(t, uint64(2), updated.LockVersion)

    _, err = k.Deliveries.FindCourier(ctx, "courier-9")
    require.ErrorIs(t, err, delivery.ErrCourierNotFound)
}
