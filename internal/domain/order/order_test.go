package order

import (
    "testing"
    "time"

    "github.com/walletera/food-delivery/internal/domain/shared"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func threeLineItems() []shared.OrderLineItem {
    return []shared.OrderLineItem{
        {MenuID: "1", Name: "Chicken Vindaloo", Price: shared.NewMoney(500, "JPY"), Quantity: 2},
        {MenuID: "2", Name: "Lamb 65", Price: shared.NewMoney(800, "JPY"), Quantity: 3},
        {MenuID: "3", Name: "Garlic Naan", Price: shared.NewMoney(1700, "JPY"), Quantity: 1},
    }
}

func newApprovedOrder(t *testing.T) *Order {
    t.Helper()
    o, _, err := Create("o-1", "c-1", "r-1", threeLineItems(), shared.DeliveryInformation{}, shared.NewMoney(1000, "JPY"))
    require.NoError(t, err)
    _, err = o.Approve()
    require.NoError(t, err)
    return o
}

func TestCreate(t *testing.T) {
    o, created, err := Create("o-1", "c-1", "r-1", threeLineItems(), shared.DeliveryInformation{}, shared.Money{})
    require.NoError(t, err)
    assert.Equal(t, ApprovalPending, o.State)
    assert.Equal(t, shared.NewMoney(5100, "JPY"), created.OrderDetails.OrderTotal)
    assert.Equal(t, "o-1", created.OrderID)

    _, _, err = Create("o-2", "c-1", "r-1", nil, shared.DeliveryInformation{}, shared.Money{})
    require.ErrorIs(t, err, ErrEmptyOrder)

    _, _, err = Create("o-3", "c-1", "r-1", []shared.OrderLineItem{{MenuID: "1", Quantity: 0}}, shared.DeliveryInformation{}, shared.Money{})
    require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestOperationsOutsideTheirSourceStates(t *testing.T) {
    tests := []struct {
        name      string
        operation func(o *Order) error
    }{
        {name: "approve", operation: func(o *Order) error { _, err := o.Approve(); return err }},
        {name: "reject", operation: func(o *Order) error { _, err := o.Reject(); return err }},
        {name: "undo begin cancel", operation: func(o *Order) error { return o.UndoBeginCancel() }},
        {name: "confirm cancel", operation: func(o *Order) error { _, err := o.ConfirmCancel(); return err }},
        {name: "undo begin revise", operation: func(o *Order) error { return o.UndoBeginRevise() }},
        {name: "confirm revise", operation: func(o *Order) error {
            _, err := o.ConfirmRevise(shared.OrderRevision{})
            return err
        }},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            o := newApprovedOrder(t)
            before := *o

            err := tt.operation(o)
            require.ErrorIs(t, err, shared.ErrUnsupportedStateTransition)
            assert.Equal(t, before, *o)
        })
    }
}

func TestReviseRaisingOneQuantityOnlyAddsItsDelta(t *testing.T) {
    o := newApprovedOrder(t)
    revision := shared.OrderRevision{RevisedLineItemQuantities: map[string]int{"2": 6}}

    change, proposed, err := o.BeginRevise(revision)
    require.NoError(t, err)
    require.Len(t, proposed, 1)
    assert.Equal(t, shared.NewMoney(5100, "JPY"), change.CurrentOrderTotal)
    assert.Equal(t, shared.NewMoney(2400, "JPY"), change.Delta)
    assert.Equal(t, shared.NewMoney(7500, "JPY"), change.NewOrderTotal)
    assert.Equal(t, RevisionPending, o.State)
    assert.Equal(t, 3, o.LineItems[1].Quantity)

    revised, err := o.ConfirmRevise(revision)
    require.NoError(t, err)
    assert.Equal(t, Approved, o.State)
    assert.Nil(t, o.PendingRevision)
    assert.Equal(t, 6, o.LineItems[1].Quantity)
    assert.Equal(t, shared.NewMoney(7500, "JPY"), revised.NewOrderTotal)

    total, err := o.Total()
    require.NoError(t, err)
    assert.Equal(t, shared.NewMoney(7500, "JPY"), total)
}

func TestBeginReviseIsIdempotentWhilePending(t *testing.T) {
    o := newApprovedOrder(t)
    revision := shared.OrderRevision{RevisedLineItemQuantities: map[string]int{"2": 6}}

    _, _, err := o.BeginRevise(revision)
    require.NoError(t, err)
    change, proposed, err := o.BeginRevise(revision)
    require.NoError(t, err)
    assert.Empty(t, proposed)
    assert.Equal(t, shared.NewMoney(7500, "JPY"), change.NewOrderTotal)

    _, _, err = o.BeginRevise(shared.OrderRevision{RevisedLineItemQuantities: map[string]int{"1": 1}})
    require.ErrorIs(t, err, shared.ErrUnsupportedStateTransition)
}

func TestBeginReviseBelowTheOrderMinimum(t *testing.T) {
    o := newApprovedOrder(t)

    _, _, err := o.BeginRevise(shared.OrderRevision{RevisedLineItemQuantities: map[string]int{"1": 0, "2": 0, "3": 0}})
    require.ErrorIs(t, err, ErrOrderMinimumNotMet)
    require.ErrorIs(t, err, shared.ErrBusinessRuleViolation)
    assert.Equal(t, Approved, o.State)

    _, _, err = o.BeginRevise(shared.OrderRevision{RevisedLineItemQuantities: map[string]int{"42": 1}})
    require.ErrorIs(t, err, ErrLineItemNotFound)
}

func TestConfirmReviseRefusesAnotherRevision(t *testing.T) {
    o := newApprovedOrder(t)
    _, _, err := o.BeginRevise(shared.OrderRevision{RevisedLineItemQuantities: map[string]int{"2": 6}})
    require.NoError(t, err)
    before := *o

    _, err = o.ConfirmRevise(shared.OrderRevision{RevisedLineItemQuantities: map[string]int{"1": 0, "2": 0, "3": 0}})
    require.ErrorIs(t, err, shared.ErrUnsupportedStateTransition)
    assert.Equal(t, before, *o)
    assert.Equal(t, 3, o.LineItems[1].Quantity)
}

func TestUndoBeginReviseRestoresApproved(t *testing.T) {
    o := newApprovedOrder(t)
    _, _, err := o.BeginRevise(shared.OrderRevision{RevisedLineItemQuantities: map[string]int{"2": 6}})
    require.NoError(t, err)

    require.NoError(t, o.UndoBeginRevise())
    assert.Equal(t, Approved, o.State)
    assert.Nil(t, o.PendingRevision)
    assert.Equal(t, 3, o.LineItems[1].Quantity)
}

func TestCancelFlow(t *testing.T) {
    o := newApprovedOrder(t)
    require.NoError(t, o.BeginCancel())
    assert.Equal(t, CancelPending, o.State)
    require.NoError(t, o.UndoBeginCancel())
    assert.Equal(t, Approved, o.State)

    require.NoError(t, o.BeginCancel())
    cancelled, err := o.ConfirmCancel()
    require.NoError(t, err)
    assert.Equal(t, Cancelled, o.State)
    assert.Equal(t, "o-1", cancelled.OrderID)
}

func TestSnapshotRoundTrip(t *testing.T) {
    o := newApprovedOrder(t)
    o.DeliveryInformation = shared.DeliveryInformation{
        DeliveryTime:    shared.NewTimestamp(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
        DeliveryAddress: shared.Address{Street1: "1 Main St", City: "Oakland", State: "CA", Zip: "94611"},
    }
    _, _, err := o.BeginRevise(shared.OrderRevision{RevisedLineItemQuantities: map[string]int{"2": 6}})
    require.NoError(t, err)
    o.SetVersion(4)

    data, err := o.MarshalSnapshot()
    require.NoError(t, err)
    restored := New()
    require.NoError(t, restored.UnmarshalSnapshot(data))
    restored.SetVersion(4)

    assert.Equal(t, o, restored)
}
