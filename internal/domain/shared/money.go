package shared

import "fmt"

const DefaultCurrency = "JPY"

type Money struct {
    Value    int64  `json:"value"`
    Currency string `json:"currency"`
}

func NewMoney(value int64, currency string) Money {
    return Money{Value: value, Currency: currency}
}

func (m Money) IsZero() bool {
    return m.Value == 0
}

func (m Money) Add(other Money) (Money, error) {
    if err := m.checkCurrency(other); err != nil {
        return Money{}, err
    }
    return Money{Value: m.Value + other.Value, Currency: m.currencyOr(other)}, nil
}

func (m Money) Sub(other Money) (Money, error) {
    if err := m.checkCurrency(other); err != nil {
        return Money{}, err
    }
    return Money{Value: m.Value - other.Value, Currency: m.currencyOr(other)}, nil
}

func (m Money) Multiply(n int) Money {
    return Money{Value: m.Value * int64(n), Currency: m.Currency}
}

func (m Money) LessThan(other Money) (bool, error) {
    if err := m.checkCurrency(other); err != nil {
        return false, err
    }
    return m.Value < other.Value, nil
}

func (m Money) String() string {
    return fmt.Sprintf("%d %s", m.Value, m.Currency)
}

// A zero Money without currency is compatible with every currency so sums
// can start from Money{}.
func (m Money) checkCurrency(other Money) error {
    if m.Currency == "" || other.Currency == "" || m.Currency == other.Currency {
        return nil
    }
    return fmt.Errorf("%w: %s and %s", ErrInvalidCurrency, m.Currency, other.Currency)
}

func (m Money) currencyOr(other Money) string {
    if m.Currency != "" {
        return m.Currency
    }
    return other.Currency
}
