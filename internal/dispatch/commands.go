package dispatch

import (
    "context"

    "github.com/walletera/food-delivery/internal/domain/shared"
)

// Action names of the saga step commands.
const (
    ActionValidateConsumer      = "validate_consumer"
    ActionCreateTicket          = "create_ticket"
    ActionConfirmCreateTicket   = "confirm_create_ticket"
    ActionCancelCreateTicket    = "cancel_create_ticket"
    ActionBeginCancelTicket     = "begin_cancel_ticket"
    ActionUndoBeginCancelTicket = "undo_begin_cancel_ticket"
    ActionConfirmCancelTicket   = "confirm_cancel_ticket"
    ActionBeginReviseTicket     = "begin_revise_ticket"
    ActionUndoBeginReviseTicket = "undo_begin_revise_ticket"
    ActionConfirmReviseTicket   = "confirm_revise_ticket"
    ActionAuthorizeCard         = "authorize_card"
    ActionReverseAuthorizeCard  = "reverse_authorize_card"
    ActionReviseAuthorizeCard   = "revise_authorize_card"
    ActionApproveOrder          = "approve_order"
    ActionRejectOrder           = "reject_order"
    ActionBeginCancelOrder      = "begin_cancel_order"
    ActionUndoBeginCancelOrder  = "undo_begin_cancel_order"
    ActionConfirmCancelOrder    = "confirm_cancel_order"
    ActionBeginReviseOrder      = "begin_revise_order"
    ActionUndoBeginReviseOrder  = "undo_begin_revise_order"
    ActionConfirmReviseOrder    = "confirm_revise_order"
)

// Result is the small object a step answers with. It is merged into the
// input of the following steps.
type Result map[string]any

// Command is a saga step request. Every command type is routed to exactly
// one Handler method.
type Command interface {
    Action() string
    Validate() error
    Accept(ctx context.Context, handler Handler) (Result, error)
}

type Handler interface {
    HandleValidateConsumer(ctx context.Context, command ValidateConsumer) (Result, error)
    HandleCreateTicket(ctx context.Context, command CreateTicket) (Result, error)
    HandleConfirmCreateTicket(ctx context.Context, command ConfirmCreateTicket) (Result, error)
    HandleCancelCreateTicket(ctx context.Context, command CancelCreateTicket) (Result, error)
    HandleBeginCancelTicket(ctx context.Context, command BeginCancelTicket) (Result, error)
    HandleUndoBeginCancelTicket(ctx context.Context, command UndoBeginCancelTicket) (Result, error)
    HandleConfirmCancelTicket(ctx context.Context, command ConfirmCancelTicket) (Result, error)
    HandleBeginReviseTicket(ctx context.Context, command BeginReviseTicket) (Result, error)
    HandleUndoBeginReviseTicket(ctx context.Context, command UndoBeginReviseTicket) (Result, error)
    HandleConfirmReviseTicket(ctx context.Context, command ConfirmReviseTicket) (Result, error)
    HandleAuthorizeCard(ctx context.Context, command AuthorizeCard) (Result, error)
    HandleReverseAuthorizeCard(ctx context.Context, command ReverseAuthorizeCard) (Result, error)
    HandleReviseAuthorizeCard(ctx context.Context, command ReviseAuthorizeCard) (Result, error)
    HandleApproveOrder(ctx context.Context, command ApproveOrder) (Result, error)
    HandleRejectOrder(ctx context.Context, command RejectOrder) (Result, error)
    HandleBeginCancelOrder(ctx context.Context, command BeginCancelOrder) (Result, error)
    HandleUndoBeginCancelOrder(ctx context.Context, command UndoBeginCancelOrder) (Result, error)
    HandleConfirmCancelOrder(ctx context.Context, command ConfirmCancelOrder) (Result, error)
    HandleBeginReviseOrder(ctx context.Context, command BeginReviseOrder) (Result, error)
    HandleUndoBeginReviseOrder(ctx context.Context, command UndoBeginReviseOrder) (Result, error)
    HandleConfirmReviseOrder(ctx context.Context, command ConfirmReviseOrder) (Result, error)
}

type ValidateConsumer struct {
    ConsumerID string       `json:"consumer_id"`
    OrderID    string       `json:"order_id"`
    OrderTotal shared.Money `json:"order_total"`
}

func (ValidateConsumer) Action() string {
    return ActionValidateConsumer
}

func (c ValidateConsumer) Validate() error {
    return requireFields(ActionValidateConsumer, field{"consumer_id", c.ConsumerID}, field{"order_id", c.OrderID})
}

func (c ValidateConsumer) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleValidateConsumer(ctx, c)
}

type CreateTicket struct {
    OrderID      string                 `json:"order_id"`
    RestaurantID string                 `json:"restaurant_id"`
    LineItems    []shared.OrderLineItem `json:"order_line_items"`
}

func (CreateTicket) Action() string {
    return ActionCreateTicket
}

func (c CreateTicket) Validate() error {
    return requireFields(ActionCreateTicket, field{"order_id", c.OrderID}, field{"restaurant_id", c.RestaurantID})
}

func (c CreateTicket) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleCreateTicket(ctx, c)
}

type ConfirmCreateTicket struct {
    TicketID string `json:"ticket_id"`
}

func (ConfirmCreateTicket) Action() string {
    return ActionConfirmCreateTicket
}

func (c ConfirmCreateTicket) Validate() error {
    return requireFields(ActionConfirmCreateTicket, field{"ticket_id", c.TicketID})
}

func (c ConfirmCreateTicket) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleConfirmCreateTicket(ctx, c)
}

type CancelCreateTicket struct {
    TicketID string `json:"ticket_id"`
}

func (CancelCreateTicket) Action() string {
    return ActionCancelCreateTicket
}

func (c CancelCreateTicket) Validate() error {
    return requireFields(ActionCancelCreateTicket, field{"ticket_id", c.TicketID})
}

func (c CancelCreateTicket) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleCancelCreateTicket(ctx, c)
}

type BeginCancelTicket struct {
    OrderID string `json:"order_id"`
}

func (BeginCancelTicket) Action() string {
    return ActionBeginCancelTicket
}

func (c BeginCancelTicket) Validate() error {
    return requireFields(ActionBeginCancelTicket, field{"order_id", c.OrderID})
}

func (c BeginCancelTicket) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleBeginCancelTicket(ctx, c)
}

type UndoBeginCancelTicket struct {
    OrderID string `json:"order_id"`
}

func (UndoBeginCancelTicket) Action() string {
    return ActionUndoBeginCancelTicket
}

func (c UndoBeginCancelTicket) Validate() error {
    return requireFields(ActionUndoBeginCancelTicket, field{"order_id", c.OrderID})
}

func (c UndoBeginCancelTicket) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleUndoBeginCancelTicket(ctx, c)
}

type ConfirmCancelTicket struct {
    OrderID string `json:"order_id"`
}

func (ConfirmCancelTicket) Action() string {
    return ActionConfirmCancelTicket
}

func (c ConfirmCancelTicket) Validate() error {
    return requireFields(ActionConfirmCancelTicket, field{"order_id", c.OrderID})
}

func (c ConfirmCancelTicket) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleConfirmCancelTicket(ctx, c)
}

type BeginReviseTicket struct {
    OrderID       string               `json:"order_id"`
    OrderRevision shared.OrderRevision `json:"order_revision"`
}

func (BeginReviseTicket) Action() string {
    return ActionBeginReviseTicket
}

func (c BeginReviseTicket) Validate() error {
    return requireFields(ActionBeginReviseTicket, field{"order_id", c.OrderID})
}

func (c BeginReviseTicket) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleBeginReviseTicket(ctx, c)
}

type UndoBeginReviseTicket struct {
    OrderID string `json:"order_id"`
}

func (UndoBeginReviseTicket) Action() string {
    return ActionUndoBeginReviseTicket
}

func (c UndoBeginReviseTicket) Validate() error {
    return requireFields(ActionUndoBeginReviseTicket, field{"order_id", c.OrderID})
}

func (c UndoBeginReviseTicket) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleUndoBeginReviseTicket(ctx, c)
}

type ConfirmReviseTicket struct {
    OrderID       string               `json:"order_id"`
    OrderRevision shared.OrderRevision `json:"order_revision"`
}

func (ConfirmReviseTicket) Action() string {
    return ActionConfirmReviseTicket
}

func (c ConfirmReviseTicket) Validate() error {
    return requireFields(ActionConfirmReviseTicket, field{"order_id", c.OrderID})
}

func (c ConfirmReviseTicket) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleConfirmReviseTicket(ctx, c)
}

type AuthorizeCard struct {
    ConsumerID string       `json:"consumer_id"`
    OrderID    string       `json:"order_id"`
    OrderTotal shared.Money `json:"order_total"`
}

func (AuthorizeCard) Action() string {
    return ActionAuthorizeCard
}

func (c AuthorizeCard) Validate() error {
    return requireFields(ActionAuthorizeCard, field{"consumer_id", c.ConsumerID}, field{"order_id", c.OrderID})
}

func (c AuthorizeCard) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleAuthorizeCard(ctx, c)
}

type ReverseAuthorizeCard struct {
    ConsumerID string `json:"consumer_id"`
    OrderID    string `json:"order_id"`
}

func (ReverseAuthorizeCard) Action() string {
    return ActionReverseAuthorizeCard
}

func (c ReverseAuthorizeCard) Validate() error {
    return requireFields(ActionReverseAuthorizeCard, field{"consumer_id", c.ConsumerID}, field{"order_id", c.OrderID})
}

func (c ReverseAuthorizeCard) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleReverseAuthorizeCard(ctx, c)
}

type ReviseAuthorizeCard struct {
    ConsumerID    string       `json:"consumer_id"`
    OrderID       string       `json:"order_id"`
    NewOrderTotal shared.Money `json:"new_order_total"`
}

func (ReviseAuthorizeCard) Action() string {
    return ActionReviseAuthorizeCard
}

func (c ReviseAuthorizeCard) Validate() error {
    return requireFields(ActionReviseAuthorizeCard, field{"consumer_id", c.ConsumerID}, field{"order_id", c.OrderID})
}

func (c ReviseAuthorizeCard) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleReviseAuthorizeCard(ctx, c)
}

type ApproveOrder struct {
    OrderID string `json:"order_id"`
}

func (ApproveOrder) Action() string {
    return ActionApproveOrder
}

func (c ApproveOrder) Validate() error {
    return requireFields(ActionApproveOrder, field{"order_id", c.OrderID})
}

func (c ApproveOrder) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleApproveOrder(ctx, c)
}

type RejectOrder struct {
    OrderID string `json:"order_id"`
}

func (RejectOrder) Action() string {
    return ActionRejectOrder
}

func (c RejectOrder) Validate() error {
    return requireFields(ActionRejectOrder, field{"order_id", c.OrderID})
}

func (c RejectOrder) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleRejectOrder(ctx, c)
}

type BeginCancelOrder struct {
    OrderID string `json:"order_id"`
}

func (BeginCancelOrder) Action() string {
    return ActionBeginCancelOrder
}

func (c BeginCancelOrder) Validate() error {
    return requireFields(ActionBeginCancelOrder, field{"order_id", c.OrderID})
}

func (c BeginCancelOrder) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleBeginCancelOrder(ctx, c)
}

type UndoBeginCancelOrder struct {
    OrderID string `json:"order_id"`
}

func (UndoBeginCancelOrder) Action() string {
    return ActionUndoBeginCancelOrder
}

func (c UndoBeginCancelOrder) Validate() error {
    return requireFields(ActionUndoBeginCancelOrder, field{"order_id", c.OrderID})
}

func (c UndoBeginCancelOrder) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleUndoBeginCancelOrder(ctx, c)
}

type ConfirmCancelOrder struct {
    OrderID string `json:"order_id"`
}

func (ConfirmCancelOrder) Action() string {
    return ActionConfirmCancelOrder
}

func (c ConfirmCancelOrder) Validate() error {
    return requireFields(ActionConfirmCancelOrder, field{"order_id", c.OrderID})
}

func (c ConfirmCancelOrder) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleConfirmCancelOrder(ctx, c)
}

type BeginReviseOrder struct {
    OrderID       string               `json:"order_id"`
    OrderRevision shared.OrderRevision `json:"order_revision"`
}

func (BeginReviseOrder) Action() string {
    return ActionBeginReviseOrder
}

func (c BeginReviseOrder) Validate() error {
    return requireFields(ActionBeginReviseOrder, field{"order_id", c.OrderID})
}

func (c BeginReviseOrder) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleBeginReviseOrder(ctx, c)
}

type UndoBeginReviseOrder struct {
    OrderID string `json:"order_id"`
}

func (UndoBeginReviseOrder) Action() string {
    return ActionUndoBeginReviseOrder
}

func (c UndoBeginReviseOrder) Validate() error {
    return requireFields(ActionUndoBeginReviseOrder, field{"order_id", c.OrderID})
}

func (c UndoBeginReviseOrder) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleUndoBeginReviseOrder(ctx, c)
}

type ConfirmReviseOrder struct {
    OrderID       string               `json:"order_id"`
    OrderRevision shared.OrderRevision `json:"order_revision"`
}

func (ConfirmReviseOrder) Action() string {
    return ActionConfirmReviseOrder
}

func (c ConfirmReviseOrder) Validate() error {
    return requireFields(ActionConfirmReviseOrder, field{"order_id", c.OrderID})
}

func (c ConfirmReviseOrder) Accept(ctx context.Context, handler Handler) (Result, error) {
    return handler.HandleConfirmReviseOrder(ctx, c)
}
