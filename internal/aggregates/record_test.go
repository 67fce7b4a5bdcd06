package aggregates

import (
    "encoding/json"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestFilterMatches(t *testing.T) {
    data := json.RawMessage(`{"consumer_id": "c-1", "state": "APPROVED", "total": {"value": 10, "currency": "JPY"}}`)

    tests := []struct {
        name   string
        filter Filter
        want   bool
    }{
        {name: "empty filter", filter: nil, want: true},
        {name: "single field", filter: Filter{"consumer_id": "c-1"}, want: true},
        {name: "every field", filter: Filter{"consumer_id": "c-1", "state": "APPROVED"}, want: true},
        {name: "different value", filter: Filter{"state": "REJECTED"}, want: false},
        {name: "missing field", filter: Filter{"restaurant_id": "r-1"}, want: false},
        {name: "nested object", filter: Filter{"total": map[string]any{"currency": "JPY", "value": 10}}, want: true},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            got, err := tt.filter.Matches(data)
            require.NoError(t, err)
            assert.Equal(t, tt.want, got)
        })
    }
}

func TestFilterRejectsNonObjects(t *testing.T) {
    _, err := Filter{"state": "APPROVED"}.Matches(json.RawMessage(`[1, 2]`))
    require.Error(t, err)
}
