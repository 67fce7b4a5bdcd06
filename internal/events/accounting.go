package events

import "github.com/walletera/food-delivery/internal/domain/shared"

const (
    ConsumerCreatedType           = "ConsumerCreated"
    AccountCreatedType            = "AccountCreated"
    CardAuthorizedType            = "CardAuthorized"
    CardAuthorizationReversedType = "CardAuthorizationReversed"
    CardAuthorizationRevisedType  = "CardAuthorizationRevised"
)

type ConsumerCreated struct {
    ConsumerID string            `json:"consumer_id"`
    Name       shared.PersonName `json:"name"`
}

func (ConsumerCreated) EventType() string  { return ConsumerCreatedType }
func (ConsumerCreated) SchemaVersion() int { return 1 }

type AccountCreated struct {
    AccountID  string `json:"account_id"`
    ConsumerID string `json:"consumer_id"`
}

func (AccountCreated) EventType() string  { return AccountCreatedType }
func (AccountCreated) SchemaVersion() int { return 1 }

type CardAuthorized struct {
    AccountID string       `json:"account_id"`
    OrderID   string       `json:"order_id"`
    Amount    shared.Money `json:"amount"`
}

func (CardAuthorized) EventType() string  { return CardAuthorizedType }
func (CardAuthorized) SchemaVersion() int { return 1 }

type CardAuthorizationReversed struct {
    AccountID string `json:"account_id"`
    OrderID   string `json:"order_id"`
}

func (CardAuthorizationReversed) EventType() string  { return CardAuthorizationReversedType }
func (CardAuthorizationReversed) SchemaVersion() int { return 1 }

type CardAuthorizationRevised struct {
    AccountID string       `json:"account_id"`
    OrderID   string       `json:"order_id"`
    Amount    shared.Money `json:"amount"`
}

func (CardAuthorizationRevised) EventType() string  { return CardAuthorizationRevisedType }
func (CardAuthorizationRevised) SchemaVersion() int { return 1 }
