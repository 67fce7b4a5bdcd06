package order

import (
    "encoding/json"
    "fmt"
    "reflect"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
)

type State string

const (
    ApprovalPending State = "APPROVAL_PENDING"
    Approved        State = "APPROVED"
    Rejected        State = "REJECTED"
    CancelPending   State = "CANCEL_PENDING"
    Cancelled       State = "CANCELLED"
    RevisionPending State = "REVISION_PENDING"
)

const snapshotVersion = 1

var (
    ErrOrderNotFound      = shared.NewError(shared.ErrNotFound, "order not found")
    ErrLineItemNotFound   = shared.NewError(shared.ErrNotFound, "line item not found")
    ErrOrderMinimumNotMet = shared.NewError(shared.ErrBusinessRuleViolation, "order minimum not met")
    ErrInvalidQuantity    = shared.NewError(shared.ErrBusinessRuleViolation, "invalid line item quantity")
    ErrEmptyOrder         = shared.NewError(shared.ErrBusinessRuleViolation, "order has no line items")
)

// LineItemQuantityChange describes how a revision moves the order total.
type LineItemQuantityChange struct {
    CurrentOrderTotal shared.Money `json:"current_order_total"`
    NewOrderTotal     shared.Money `json:"new_order_total"`
    Delta             shared.Money `json:"delta"`
}

type Order struct {
    aggregates.Base
    State               State
    ConsumerID          string
    RestaurantID        string
    LineItems           []shared.OrderLineItem
    DeliveryInformation shared.DeliveryInformation
    OrderMinimum        shared.Money
    PendingRevision     *shared.OrderRevision
}

func New() *Order {
    return &Order{}
}

func Create(id string, consumerID string, restaurantID string, lineItems []shared.OrderLineItem, deliveryInformation shared.DeliveryInformation, orderMinimum shared.Money) (*Order, events.OrderCreated, error) {
    if len(lineItems) == 0 {
        return nil, events.OrderCreated{}, ErrEmptyOrder
    }
    for _, item := range lineItems {
        if item.Quantity <= 0 {
            return nil, events.OrderCreated{}, fmt.Errorf("%w: %s", ErrInvalidQuantity, item.MenuID)
        }
    }
    o := &Order{
        Base:                aggregates.Base{ID: id},
        State:               ApprovalPending,
        ConsumerID:          consumerID,
        RestaurantID:        restaurantID,
        LineItems:           lineItems,
        DeliveryInformation: deliveryInformation,
        OrderMinimum:        orderMinimum,
    }
    total, err := o.Total()
    if err != nil {
        return nil, events.OrderCreated{}, err
    }
    return o, events.OrderCreated{
        OrderID: id,
        OrderDetails: events.OrderDetails{
            ConsumerID:     consumerID,
            RestaurantID:   restaurantID,
            OrderLineItems: lineItems,
            OrderTotal:     total,
        },
        DeliveryInformation: deliveryInformation,
    }, nil
}

func (o *Order) Total() (shared.Money, error) {
    return shared.SumLineItems(o.LineItems)
}

func (o *Order) Approve() (events.OrderAuthorized, error) {
    if err := o.requireState("approve", ApprovalPending); err != nil {
        return events.OrderAuthorized{}, err
    }
    o.State = Approved
    return events.OrderAuthorized{OrderID: o.ID}, nil
}

func (o *Order) Reject() (events.OrderRejected, error) {
    if err := o.requireState("reject", ApprovalPending); err != nil {
        return events.OrderRejected{}, err
    }
    o.State = Rejected
    return events.OrderRejected{OrderID: o.ID}, nil
}

func (o *Order) BeginCancel() error {
    if err := o.requireState("begin_cancel", Approved); err != nil {
        return err
    }
    o.State = CancelPending
    return nil
}

func (o *Order) UndoBeginCancel() error {
    if err := o.requireState("undo_begin_cancel", CancelPending); err != nil {
        return err
    }
    o.State = Approved
    return nil
}

func (o *Order) ConfirmCancel() (events.OrderCancelled, error) {
    if err := o.requireState("confirm_cancel", CancelPending); err != nil {
        return events.OrderCancelled{}, err
    }
    o.State = Cancelled
    return events.OrderCancelled{OrderID: o.ID}, nil
}

// BeginRevise computes the effect of revision on the total without touching
// the line items and parks the order in REVISION_PENDING.
//
// Beginning the same revision again while it is pending answers the same
// change without a new event.
func (o *Order) BeginRevise(revision shared.OrderRevision) (LineItemQuantityChange, []events.OrderRevisionProposed, error) {
    if o.State == RevisionPending && o.PendingRevision != nil && reflect.DeepEqual(*o.PendingRevision, revision) {
        change, err := o.quantityChange(revision)
        return change, nil, err
    }
    if err := o.requireState("begin_revise", Approved); err != nil {
        return LineItemQuantityChange{}, nil, err
    }
    change, err := o.quantityChange(revision)
    if err != nil {
        return LineItemQuantityChange{}, nil, err
    }
    belowMinimum, err := change.NewOrderTotal.LessThan(o.OrderMinimum)
    if err != nil {
        return LineItemQuantityChange{}, nil, err
    }
    if belowMinimum {
        return LineItemQuantityChange{}, nil, fmt.Errorf("%w: new total %s is below %s", ErrOrderMinimumNotMet, change.NewOrderTotal, o.OrderMinimum)
    }
    o.State = RevisionPending
    o.PendingRevision = &revision
    return change, []events.OrderRevisionProposed{{
        OrderID:           o.ID,
        OrderRevision:     revision,
        CurrentOrderTotal: change.CurrentOrderTotal,
        NewOrderTotal:     change.NewOrderTotal,
    }}, nil
}

func (o *Order) UndoBeginRevise() error {
    if err := o.requireState("undo_begin_revise", RevisionPending); err != nil {
        return err
    }
    o.State = Approved
    o.PendingRevision = nil
    return nil
}

// ConfirmRevise applies the pending revision. Only the revision that was
// begun can be confirmed.
func (o *Order) ConfirmRevise(revision shared.OrderRevision) (events.OrderRevised, error) {
    if err := o.requireState("confirm_revise", RevisionPending); err != nil {
        return events.OrderRevised{}, err
    }
    if o.PendingRevision == nil || !reflect.DeepEqual(*o.PendingRevision, revision) {
        return events.OrderRevised{}, fmt.Errorf("%w: revision does not match the pending one", shared.UnsupportedTransition("order", "confirm_revise", string(o.State)))
    }
    change, err := o.quantityChange(revision)
    if err != nil {
        return events.OrderRevised{}, err
    }
    lineItems := make([]shared.OrderLineItem, len(o.LineItems))
    copy(lineItems, o.LineItems)
    for i, item := range lineItems {
        if quantity, ok := revision.RevisedLineItemQuantities[item.MenuID]; ok {
            lineItems[i].Quantity = quantity
        }
    }
    o.LineItems = lineItems
    if revision.DeliveryInformation != nil {
        o.DeliveryInformation = *revision.DeliveryInformation
    }
    o.State = Approved
    o.PendingRevision = nil
    return events.OrderRevised{
        OrderID:           o.ID,
        OrderRevision:     revision,
        CurrentOrderTotal: change.CurrentOrderTotal,
        NewOrderTotal:     change.NewOrderTotal,
        OrderLineItems:    lineItems,
    }, nil
}

// ValidateRevision checks a revision against the current line items without
// changing the order.
func (o *Order) ValidateRevision(revision shared.OrderRevision) error {
    if err := o.requireState("revise", Approved); err != nil {
        return err
    }
    _, err := o.quantityChange(revision)
    return err
}

func (o *Order) cancelRequested(total shared.Money) events.CancelOrderSagaRequested {
    return events.CancelOrderSagaRequested{
        OrderID:    o.ID,
        ConsumerID: o.ConsumerID,
        OrderTotal: total,
    }
}

func (o *Order) revisionRequested(revision shared.OrderRevision) events.ReviseOrderSagaRequested {
    return events.ReviseOrderSagaRequested{
        OrderID:       o.ID,
        ConsumerID:    o.ConsumerID,
        OrderRevision: revision,
    }
}

func (o *Order) quantityChange(revision shared.OrderRevision) (LineItemQuantityChange, error) {
    current, err := o.Total()
    if err != nil {
        return LineItemQuantityChange{}, err
    }
    delta := shared.Money{Currency: current.Currency}
    for menuID, quantity := range revision.RevisedLineItemQuantities {
        if quantity < 0 {
            return LineItemQuantityChange{}, fmt.Errorf("%w: %s", ErrInvalidQuantity, menuID)
        }
        item, found := o.findLineItem(menuID)
        if !found {
            return LineItemQuantityChange{}, fmt.Errorf("%w: %s", ErrLineItemNotFound, menuID)
        }
        delta, err = delta.Add(item.DeltaForChangedQuantity(quantity))
        if err != nil {
            return LineItemQuantityChange{}, err
        }
    }
    newTotal, err := current.Add(delta)
    if err != nil {
        return LineItemQuantityChange{}, err
    }
    return LineItemQuantityChange{
        CurrentOrderTotal: current,
        NewOrderTotal:     newTotal,
        Delta:             delta,
    }, nil
}

func (o *Order) findLineItem(menuID string) (shared.OrderLineItem, bool) {
    for _, item := range o.LineItems {
        if item.MenuID == menuID {
            return item, true
        }
    }
    return shared.OrderLineItem{}, false
}

func (o *Order) requireState(operation string, allowed State) error {
    if o.State != allowed {
        return shared.UnsupportedTransition("order", operation, string(o.State))
    }
    return nil
}

func (o *Order) AggregateType() string {
    return events.AggregateOrder
}

type snapshot struct {
    aggregates.SnapshotHeader
    ID                  string                     `json:"id"`
    State               State                      `json:"state"`
    ConsumerID          string                     `json:"consumer_id"`
    RestaurantID        string                     `json:"restaurant_id"`
    LineItems           []shared.OrderLineItem     `json:"line_items"`
    DeliveryInformation shared.DeliveryInformation `json:"delivery_information"`
    OrderMinimum        shared.Money               `json:"order_minimum"`
    PendingRevision     *shared.OrderRevision      `json:"pending_revision,omitempty"`
}

func (o *Order) MarshalSnapshot() ([]byte, error) {
    return json.Marshal(snapshot{
        SnapshotHeader:      aggregates.SnapshotHeader{SchemaVersion: snapshotVersion},
        ID:                  o.ID,
        State:               o.State,
        ConsumerID:          o.ConsumerID,
        RestaurantID:        o.RestaurantID,
        LineItems:           o.LineItems,
        DeliveryInformation: o.DeliveryInformation,
        OrderMinimum:        o.OrderMinimum,
        PendingRevision:     o.PendingRevision,
    })
}

func (o *Order) UnmarshalSnapshot(data []byte) error {
    var s snapshot
    if err := aggregates.UnmarshalSnapshot(data, &s, snapshotVersion); err != nil {
        return err
    }
    o.ID = s.ID
    o.State = s.State
    o.ConsumerID = s.ConsumerID
    o.RestaurantID = s.RestaurantID
    o.LineItems = s.LineItems
    o.DeliveryInformation = s.DeliveryInformation
    o.OrderMinimum = s.OrderMinimum
    o.PendingRevision = s.PendingRevision
    return nil
}
