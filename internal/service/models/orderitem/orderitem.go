package orderitem

import (
	"time"

	"github.com/corray333/backend-labs/checkout/internal/service/models/product"
	"github.com/shopspring/decimal"
)

// OrderItem represents an item within an order. Price is the unit price
// captured at checkout time; it never changes when the catalog price does.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Product is resolved from the catalog for read serialization only.
	Product *product.Product `json:"product,omitempty"`
}

// Subtotal returns quantity x unit price using exact decimal arithmetic.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
