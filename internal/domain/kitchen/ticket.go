package kitchen

import (
    "encoding/json"
    "fmt"
    "time"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
)

type State string

const (
    CreatePending      State = "CREATE_PENDING"
    AwaitingAcceptance State = "AWAITING_ACCEPTANCE"
    Accepted           State = "ACCEPTED"
    CancelPending      State = "CANCEL_PENDING"
    Cancelled          State = "CANCELLED"
    RevisionPending    State = "REVISION_PENDING"
)

const snapshotVersion = 1

var (
    ErrTicketNotFound  = shared.NewError(shared.ErrNotFound, "ticket not found")
    ErrInvalidReadyBy  = shared.NewError(shared.ErrBusinessRuleViolation, "ready by must be in the future")
    ErrUnknownLineItem = shared.NewError(shared.ErrNotFound, "ticket line item not found")
)

// Ticket is the kitchen view of an order. Its id is the order id.
type Ticket struct {
    aggregates.Base
    State         State
    PreviousState State
    RestaurantID  string
    LineItems     []shared.TicketLineItem
    ReadyBy       *time.Time
    AcceptTime    *time.Time
}

func New() *Ticket {
    return &Ticket{}
}

func Create(orderID string, restaurantID string, lineItems []shared.TicketLineItem) *Ticket {
    return &Ticket{
        Base:         aggregates.Base{ID: orderID},
        State:        CreatePending,
        RestaurantID: restaurantID,
        LineItems:    lineItems,
    }
}

func (t *Ticket) ConfirmCreate() (events.TicketCreated, error) {
    if err := t.requireState("confirm_create", CreatePending); err != nil {
        return events.TicketCreated{}, err
    }
    t.State = AwaitingAcceptance
    return events.TicketCreated{TicketID: t.ID, RestaurantID: t.RestaurantID, LineItems: t.LineItems}, nil
}

func (t *Ticket) CancelCreate() (events.TicketCancelled, error) {
    if err := t.requireState("cancel_create", CreatePending); err != nil {
        return events.TicketCancelled{}, err
    }
    t.State = Cancelled
    return t.cancelled(), nil
}

func (t *Ticket) BeginCancel() error {
    if err := t.requireState("begin_cancel", AwaitingAcceptance, Accepted); err != nil {
        return err
    }
    t.PreviousState = t.State
    t.State = CancelPending
    return nil
}

func (t *Ticket) UndoBeginCancel() error {
    if err := t.requireState("undo_begin_cancel", CancelPending); err != nil {
        return err
    }
    t.restorePreviousState()
    return nil
}

func (t *Ticket) ConfirmCancel() (events.TicketCancelled, error) {
    if err := t.requireState("confirm_cancel", CancelPending); err != nil {
        return events.TicketCancelled{}, err
    }
    t.State = Cancelled
    t.PreviousState = ""
    return t.cancelled(), nil
}

// BeginRevise only checks the revision; line items change on ConfirmRevise.
func (t *Ticket) BeginRevise(revisedQuantities map[string]int) error {
    if err := t.requireState("begin_revise", AwaitingAcceptance, Accepted); err != nil {
        return err
    }
    if err := t.checkRevision(revisedQuantities); err != nil {
        return err
    }
    t.PreviousState = t.State
    t.State = RevisionPending
    return nil
}

func (t *Ticket) UndoBeginRevise() error {
    if err := t.requireState("undo_begin_revise", RevisionPending); err != nil {
        return err
    }
    t.restorePreviousState()
    return nil
}

func (t *Ticket) ConfirmRevise(revisedQuantities map[string]int) (events.TicketRevised, error) {
    if err := t.requireState("confirm_revise", RevisionPending); err != nil {
        return events.TicketRevised{}, err
    }
    if err := t.checkRevision(revisedQuantities); err != nil {
        return events.TicketRevised{}, err
    }
    lineItems := make([]shared.TicketLineItem, len(t.LineItems))
    copy(lineItems, t.LineItems)
    for i, item := range lineItems {
        if quantity, ok := revisedQuantities[item.MenuID]; ok {
            lineItems[i].Quantity = quantity
        }
    }
    t.LineItems = lineItems
    t.restorePreviousState()
    return events.TicketRevised{TicketID: t.ID, RevisedLineItemQuantities: revisedQuantities}, nil
}

func (t *Ticket) Accept(readyBy time.Time, now time.Time) (events.TicketAccepted, error) {
    if err := t.requireState("accept", AwaitingAcceptance); err != nil {
        return events.TicketAccepted{}, err
    }
    if !readyBy.After(now) {
        return events.TicketAccepted{}, fmt.Errorf("%w: %s", ErrInvalidReadyBy, shared.FormatTime(readyBy))
    }
    readyBy = readyBy.UTC().Truncate(time.Microsecond)
    acceptTime := now.UTC().Truncate(time.Microsecond)
    t.State = Accepted
    t.ReadyBy = &readyBy
    t.AcceptTime = &acceptTime
    return events.TicketAccepted{
        TicketID:     t.ID,
        RestaurantID: t.RestaurantID,
        ReadyBy:      shared.NewTimestamp(readyBy),
    }, nil
}

func (t *Ticket) checkRevision(revisedQuantities map[string]int) error {
    for menuID := range revisedQuantities {
        found := false
        for _, item := range t.LineItems {
            if item.MenuID == menuID {
                found = true
                break
            }
        }
        if !found {
            return fmt.Errorf("%w: %s", ErrUnknownLineItem, menuID)
        }
    }
    return nil
}

func (t *Ticket) restorePreviousState() {
    t.State = t.PreviousState
    t.PreviousState = ""
}

func (t *Ticket) cancelled() events.TicketCancelled {
    return events.TicketCancelled{TicketID: t.ID, RestaurantID: t.RestaurantID}
}

func (t *Ticket) requireState(operation string, allowed ...State) error {
    for _, state := range allowed {
        if t.State == state {
            return nil
        }
    }
    return shared.UnsupportedTransition("ticket", operation, string(t.State))
}

func (t *Ticket) AggregateType() string {
    return events.AggregateTicket
}

type snapshot struct {
    aggregates.SnapshotHeader
    ID            string                  `json:"id"`
    State         State                   `json:"state"`
    PreviousState State                   `json:"previous_state,omitempty"`
    RestaurantID  string                  `json:"restaurant_id"`
    LineItems     []shared.TicketLineItem `json:"line_items"`
    ReadyBy       *shared.Timestamp       `json:"ready_by,omitempty"`
    AcceptTime    *shared.Timestamp       `json:"accept_time,omitempty"`
}

func (t *Ticket) MarshalSnapshot() ([]byte, error) {
    return json.Marshal(snapshot{
        SnapshotHeader: aggregates.SnapshotHeader{SchemaVersion: snapshotVersion},
        ID:             t.ID,
        State:          t.State,
        PreviousState:  t.PreviousState,
        RestaurantID:   t.RestaurantID,
        LineItems:      t.LineItems,
        ReadyBy:        toTimestamp(t.ReadyBy),
        AcceptTime:     toTimestamp(t.AcceptTime),
    })
}

func (t *Ticket) UnmarshalSnapshot(data []byte) error {
    var s snapshot
    if err := aggregates.UnmarshalSnapshot(data, &s, snapshotVersion); err != nil {
        return err
    }
    t.ID = s.ID
    t.State = s.State
    t.PreviousState = s.PreviousState
    t.RestaurantID = s.RestaurantID
    t.LineItems = s.LineItems
    t.ReadyBy = fromTimestamp(s.ReadyBy)
    t.AcceptTime = fromTimestamp(s.AcceptTime)
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
