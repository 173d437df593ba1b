package cart

import (
	"github.com/shopspring/decimal"
)

// Item is one proposed purchase line: a product reference, a positive
// quantity and the unit price submitted by the client.
type Item struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
}

// Cart is the client-submitted checkout payload after schema validation:
// shipping fields, a payment method token and the proposed items.
type Cart struct {
	FirstName     string
	LastName      string
	Email         string
	Address       string
	Zipcode       string
	Place         string
	Phone         string
	PaymentMethod string
	Items         []Item
}

// Total computes the payable amount as the sum of quantity x unit price
// over all items. Pure; exact decimal arithmetic, no rounding.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return total
}

// TotalMinorUnits converts the total into the gateway's minor currency
// units (e.g. cents), rounding half away from zero.
func (c Cart) TotalMinorUnits() int64 {
	return c.Total().Shift(2).Round(0).IntPart()
}
