package shared

import (
    "encoding/json"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestMoneyArithmetic(t *testing.T) {
    price := NewMoney(1275, "JPY")

    sum, err := price.Add(NewMoney(25, "JPY"))
    require.NoError(t, err)
    assert.Equal(t, NewMoney(1300, "JPY"), sum)

    diff, err := price.Sub(NewMoney(1300, "JPY"))
    require.NoError(t, err)
    assert.Equal(t, NewMoney(-25, "JPY"), diff)

    assert.Equal(t, NewMoney(3825, "JPY"), price.Multiply(3))
}

func TestMoneyCurrencyMismatch(t *testing.T) {
    _, err := NewMoney(1, "JPY").Add(NewMoney(1, "USD"))
    require.ErrorIs(t, err, ErrInvalidCurrency)
    require.ErrorIs(t, err, ErrBusinessRuleViolation)

    _, err = NewMoney(1, "JPY").LessThan(NewMoney(1, "USD"))
    require.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestZeroMoneyTakesTheOtherCurrency(t *testing.T) {
    sum, err := Money{}.Add(NewMoney(500, "USD"))
    require.NoError(t, err)
    assert.Equal(t, NewMoney(500, "USD"), sum)
}

func TestSumLineItems(t *testing.T) {
    total, err := SumLineItems([]OrderLineItem{
        {MenuID: "1", Price: NewMoney(500, "JPY"), Quantity: 2},
        {MenuID: "2", Price: NewMoney(1275, "JPY"), Quantity: 4},
    })
    require.NoError(t, err)
    assert.Equal(t, NewMoney(6100, "JPY"), total)

    item := OrderLineItem{MenuID: "1", Price: NewMoney(500, "JPY"), Quantity: 2}
    assert.Equal(t, NewMoney(1500, "JPY"), item.DeltaForChangedQuantity(5))
    assert.Equal(t, NewMoney(-500, "JPY"), item.DeltaForChangedQuantity(1))
}

func TestTimestampWireFormat(t *testing.T) {
    ts := NewTimestamp(time.Date(2024, 3, 1, 10, 30, 0, 123456789, time.FixedZone("JST", 9*3600)))

    data, err := json.Marshal(ts)
    require.NoError(t, err)
    assert.Equal(t, `"2024-03-01T01:30:00.123456Z"`, string(data))

    var decoded Timestamp
    require.NoError(t, json.Unmarshal(data, &decoded))
    assert.True(t, decoded.Equal(ts.Time))

    require.NoError(t, json.Unmarshal([]byte(`"2024-03-01T10:30:00+09:00"`), &decoded))
    assert.Equal(t, time.Date(2024, 3, 1, 1, 30, 0, 0, time.UTC), decoded.Time)

    require.Error(t, json.Unmarshal([]byte(`"yesterday"`), &decoded))
}

func TestToWError(t *testing.T) {
    assert.Nil(t, ToWError(nil))

    retryable := ToWError(NewError(ErrConcurrencyConflict, "lost the race"))
    require.NotNil(t, retryable)
    assert.True(t, retryable.IsRetryable())

    unavailable := ToWError(errors.Join(errors.New("dial tcp"), ErrUnavailable))
    assert.True(t, unavailable.IsRetryable())

    final := ToWError(UnsupportedTransition("Order", "approve", "REJECTED"))
    assert.False(t, final.IsRetryable())
}

func TestKindOf(t *testing.T) {
    err := NewError(ErrNotFound, "order not found")
    assert.Equal(t, ErrNotFound, KindOf(err))
    assert.Equal(t, ErrBusinessRuleViolation, KindOf(ErrInvalidCurrency))
    assert.Nil(t, KindOf(errors.New("boom")))
}
