package events

import "github.com/walletera/food-delivery/internal/domain/shared"

const (
    TicketCreatedType   = "TicketCreated"
    TicketAcceptedType  = "TicketAccepted"
    TicketCancelledType = "TicketCancelled"
    TicketRevisedType   = "TicketRevised"
)

type TicketCreated struct {
    TicketID     string                  `json:"ticket_id"`
    RestaurantID string                  `json:"restaurant_id"`
    LineItems    []shared.TicketLineItem `json:"line_items"`
}

func (TicketCreated) EventType() string  { return TicketCreatedType }
func (TicketCreated) SchemaVersion() int { return 1 }

type TicketAccepted struct {
    TicketID     string           `json:"ticket_id"`
    RestaurantID string           `json:"restaurant_id"`
    ReadyBy      shared.Timestamp `json:"ready_by"`
}

func (TicketAccepted) EventType() string  { return TicketAcceptedType }
func (TicketAccepted) SchemaVersion() int { return 1 }

type TicketCancelled struct {
    TicketID     string `json:"ticket_id"`
    RestaurantID string `json:"restaurant_id"`
}

func (TicketCancelled) EventType() string  { return TicketCancelledType }
func (TicketCancelled) SchemaVersion() int { return 1 }

type TicketRevised struct {
    TicketID                  string         `json:"ticket_id"`
    RevisedLineItemQuantities map[string]int `json:"revised_line_item_quantities"`
}

func (TicketRevised) EventType() string  { return TicketRevisedType }
func (TicketRevised) SchemaVersion() int { return 1 }
