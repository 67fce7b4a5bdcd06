package shared

import (
    "encoding/json"
    "fmt"
    "time"
)

// TimeLayout is the wire format of every timestamp: UTC with microseconds.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

func FormatTime(t time.Time) string {
    return t.UTC().Format(TimeLayout)
}

func ParseTime(s string) (time.Time, error) {
    t, err := time.Parse(TimeLayout, s)
    if err == nil {
        return t, nil
    }
    t, rfcErr := time.Parse(time.RFC3339Nano, s)
    if rfcErr != nil {
        return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
    }
    return t.UTC(), nil
}

// Timestamp is a time.Time that travels with microsecond precision.
type Timestamp struct {
    time.Time
}

func NewTimestamp(t time.Time) Timestamp {
    return Timestamp{Time: t.UTC().Truncate(time.Microsecond)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
    return json.Marshal(FormatTime(t.Time))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
    var s string
    if err := json.Unmarshal(data, &s); err != nil {
        return err
    }
    parsed, err := ParseTime(s)
    if err != nil {
        return err
    }
    t.Time = parsed
    return nil
}

type Address struct {
    Street1 string `json:"street1"`
    Street2 string `json:"street2"`
    City    string `json:"city"`
    State   string `json:"state"`
    Zip     string `json:"zip"`
}

type DeliveryInformation struct {
    DeliveryTime    Timestamp `json:"delivery_time"`
    DeliveryAddress Address   `json:"delivery_address"`
}

type PersonName struct {
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
}

type MenuItem struct {
    MenuID   string `json:"menu_id"`
    MenuName string `json:"menu_name"`
    Price    Money  `json:"price"`
}

type OrderLineItem struct {
    MenuID   string `json:"menu_id"`
    Name     string `json:"name"`
    Price    Money  `json:"price"`
    Quantity int    `json:"quantity"`
}

func (i OrderLineItem) Total() Money {
    return i.Price.Multiply(i.Quantity)
}

// DeltaForChangedQuantity is the amount the order total moves when the
// quantity of this line changes to newQuantity.
func (i OrderLineItem) DeltaForChangedQuantity(newQuantity int) Money {
    return i.Price.Multiply(newQuantity - i.Quantity)
}

func SumLineItems(items []OrderLineItem) (Money, error) {
    total := Money{}
    for _, item := range items {
        var err error
        total, err = total.Add(item.Total())
        if err != nil {
            return Money{}, err
        }
    }
    return total, nil
}

type TicketLineItem struct {
    MenuID   string `json:"menu_id"`
    Name     string `json:"name"`
    Quantity int    `json:"quantity"`
}

// OrderRevision is a requested change of line item quantities (keyed by
// menu id) and, optionally, of the delivery information.
type OrderRevision struct {
    DeliveryInformation       *DeliveryInformation `json:"delivery_information,omitempty"`
    RevisedLineItemQuantities map[string]int       `json:"revised_line_item_quantities"`
}
