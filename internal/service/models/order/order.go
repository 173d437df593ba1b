package order

import (
	"time"

	"github.com/corray333/backend-labs/checkout/internal/service/models/currency"
	"github.com/corray333/backend-labs/checkout/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// Order represents a completed purchase. It is created only as the terminal
// step of a successful checkout and is immutable afterwards. PaymentRef is
// set if and only if the gateway confirmed the charge: no order row exists
// without a successful payment behind it.
type Order struct {
	ID         int64                 `json:"id"`
	CustomerID int64                 `json:"customer_id"`
	FirstName  string                `json:"first_name"`
	LastName   string                `json:"last_name"`
	Email      string                `json:"email"`
	Address    string                `json:"address"`
	Zipcode    string                `json:"zipcode"`
	Place      string                `json:"place"`
	Phone      string                `json:"phone"`
	PaymentRef string                `json:"payment_ref"`
	PaidAmount decimal.Decimal       `json:"paid_amount"`
	Currency   currency.Currency     `json:"currency"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
	OrderItems []orderitem.OrderItem `json:"items"`
}
