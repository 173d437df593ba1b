package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)

	return d
}

func TestCartTotal(t *testing.T) {
	tests := []struct {
		name       string
		items      []Item
		wantTotal  string
		wantMinor  int64
	}{
		{
			name:      "empty cart totals zero",
			items:     nil,
			wantTotal: "0.00",
			wantMinor: 0,
		},
		{
			name: "two of a hundred",
			items: []Item{
				{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("100.00")},
			},
			wantTotal: "200.00",
			wantMinor: 20000,
		},
		{
			name: "multiple lines sum exactly",
			items: []Item{
				{ProductID: 1, Quantity: 3, Price: decimal.RequireFromString("19.99")},
				{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("0.01")},
			},
			wantTotal: "59.98",
			wantMinor: 5998,
		},
		{
			name: "no float drift on repeated cents",
			items: []Item{
				{ProductID: 1, Quantity: 10, Price: decimal.RequireFromString("0.10")},
			},
			wantTotal: "1.00",
			wantMinor: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Cart{Items: tt.items}
			assert.Equal(t, tt.wantTotal, c.Total().StringFixed(2))
			assert.Equal(t, tt.wantMinor, c.TotalMinorUnits())
		})
	}
}

func TestCartTotalIsPure(t *testing.T) {
	c := Cart{Items: []Item{
		{ProductID: 1, Quantity: 2, Price: mustDecimal(t, "100.00")},
	}}

	first := c.Total()
	second := c.Total()

	assert.True(t, first.Equal(second))
	assert.Equal(t, 2, c.Items[0].Quantity)
}
