package accounting

import (
    "encoding/json"
    "fmt"
    "time"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/events"
)

const snapshotVersion = 1

var (
    ErrAccountNotFound            = shared.NewError(shared.ErrNotFound, "account not found")
    ErrAuthorizationNotFound      = shared.NewError(shared.ErrNotFound, "card authorization not found")
    ErrCardAuthorizationFailed    = shared.NewError(shared.ErrBusinessRuleViolation, "card authorization failed")
    ErrAuthorizationAlreadyExists = shared.NewError(shared.ErrUnsupportedStateTransition, "card authorization already exists")
)

type Card struct {
    Last4       string `json:"last4"`
    ExpiryYear  int    `json:"expiry_year"`
    ExpiryMonth int    `json:"expiry_month"`
}

// Expired reports whether the card can no longer be charged at t. A card is
// valid until the end of its expiry month.
func (c Card) Expired(t time.Time) bool {
    validUntil := time.Date(c.ExpiryYear, time.Month(c.ExpiryMonth)+1, 1, 0, 0, 0, 0, time.UTC)
    return !t.UTC().Before(validUntil)
}

type Account struct {
    aggregates.Base
    ConsumerID  string
    Card        Card
    CreditLimit shared.Money
    // Authorizations holds the amount currently authorized per order id.
    Authorizations map[string]shared.Money
}

func New() *Account {
    return &Account{Authorizations: map[string]shared.Money{}}
}

// Create opens the account of a consumer. Accounts share the consumer id.
func Create(consumerID string, card Card, creditLimit shared.Money) (*Account, events.AccountCreated) {
    a := &Account{
        Base:           aggregates.Base{ID: consumerID},
        ConsumerID:     consumerID,
        Card:           card,
        CreditLimit:    creditLimit,
        Authorizations: map[string]shared.Money{},
    }
    return a, events.AccountCreated{AccountID: consumerID, ConsumerID: consumerID}
}

// Authorize reserves amount for orderID. Authorizing the same order with the
// same amount again is a no-op.
func (a *Account) Authorize(orderID string, amount shared.Money, now time.Time) ([]events.CardAuthorized, error) {
    if existing, ok := a.Authorizations[orderID]; ok {
        if existing == amount {
            return nil, nil
        }
        return nil, fmt.Errorf("%w: order %s", ErrAuthorizationAlreadyExists, orderID)
    }
    if err := a.checkAuthorization(orderID, amount, now); err != nil {
        return nil, err
    }
    a.Authorizations[orderID] = amount
    return []events.CardAuthorized{{AccountID: a.ID, OrderID: orderID, Amount: amount}}, nil
}

func (a *Account) ReverseAuthorization(orderID string) (events.CardAuthorizationReversed, error) {
    if _, ok := a.Authorizations[orderID]; !ok {
        return events.CardAuthorizationReversed{}, fmt.Errorf("%w: order %s", ErrAuthorizationNotFound, orderID)
    }
    delete(a.Authorizations, orderID)
    return events.CardAuthorizationReversed{AccountID: a.ID, OrderID: orderID}, nil
}

func (a *Account) ReviseAuthorization(orderID string, amount shared.Money, now time.Time) (events.CardAuthorizationRevised, error) {
    if _, ok := a.Authorizations[orderID]; !ok {
        return events.CardAuthorizationRevised{}, fmt.Errorf("%w: order %s", ErrAuthorizationNotFound, orderID)
    }
    if err := a.checkAuthorization(orderID, amount, now); err != nil {
        return events.CardAuthorizationRevised{}, err
    }
    a.Authorizations[orderID] = amount
    return events.CardAuthorizationRevised{AccountID: a.ID, OrderID: orderID, Amount: amount}, nil
}

// checkAuthorization validates amount as the authorization of orderID,
// counting every other outstanding authorization against the credit limit.
func (a *Account) checkAuthorization(orderID string, amount shared.Money, now time.Time) error {
    if a.Card.Expired(now) {
        return fmt.Errorf("%w: card expired", ErrCardAuthorizationFailed)
    }
    if amount.Value <= 0 {
        return fmt.Errorf("%w: invalid amount %s", ErrCardAuthorizationFailed, amount)
    }
    if a.CreditLimit.IsZero() {
        return nil
    }
    outstanding := amount
    for otherOrderID, authorized := range a.Authorizations {
        if otherOrderID == orderID {
            continue
        }
        var err error
        outstanding, err = outstanding.Add(authorized)
        if err != nil {
            return err
        }
    }
    exceeded, err := a.CreditLimit.LessThan(outstanding)
    if err != nil {
        return err
    }
    if exceeded {
        return fmt.Errorf("%w: credit limit %s exceeded", ErrCardAuthorizationFailed, a.CreditLimit)
    }
    return nil
}

func (a *Account) AggregateType() string {
    return events.AggregateAccount
}

type snapshot struct {
    aggregates.SnapshotHeader
    ID             string                  `json:"id"`
    ConsumerID     string                  `json:"consumer_id"`
    Card           Card                    `json:"card"`
    CreditLimit    shared.Money            `json:"credit_limit"`
    Authorizations map[string]shared.Money `json:"authorizations"`
}

func (a *Account) MarshalSnapshot() ([]byte, error) {
    return json.Marshal(snapshot{
        SnapshotHeader: aggregates.SnapshotHeader{SchemaVersion: snapshotVersion},
        ID:             a.ID,
        ConsumerID:     a.ConsumerID,
        Card:           a.Card,
        CreditLimit:    a.CreditLimit,
        Authorizations: a.Authorizations,
    })
}

func (a *Account) UnmarshalSnapshot(data []byte) error {
    var s snapshot
    if err := aggregates.UnmarshalSnapshot(data, &s, snapshotVersion); err != nil {
        return err
    }
    a.ID = s.ID
    a.ConsumerID = s.ConsumerID
    a.Card = s.Card
    a.CreditLimit = s.CreditLimit
    a.Authorizations = s.Authorizations
    if a.Authorizations == nil {
        a.Authorizations = map[string]shared.Money{}
    }
    return nil
}
