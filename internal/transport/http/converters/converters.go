package converters

import (
	"github.com/corray333/backend-labs/checkout/internal/service/models/order"
	"github.com/corray333/backend-labs/checkout/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/checkout/internal/service/models/product"
)

// ProductResponse is the wire representation of a catalog product nested
// inside an order item.
type ProductResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	Thumbnail   string `json:"thumbnail"`
}

// OrderItemResponse is the wire representation of an order item.
type OrderItemResponse struct {
	Product   *ProductResponse `json:"product,omitempty"`
	ProductID int64            `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     string           `json:"price"`
}

// OrderResponse is the wire representation of an order. Monetary values
// are serialized as strings with two fraction digits.
type OrderResponse struct {
	ID         int64               `json:"id"`
	FirstName  string              `json:"first_name"`
	LastName   string              `json:"last_name"`
	Email      string              `json:"email"`
	Address    string              `json:"address"`
	Zipcode    string              `json:"zipcode"`
	Place      string              `json:"place"`
	Phone      string              `json:"phone"`
	PaymentRef string              `json:"payment_ref"`
	PaidAmount string              `json:"paid_amount"`
	Currency   string              `json:"currency"`
	Items      []OrderItemResponse `json:"items"`
}

// OrderToResponse converts a service layer order to its wire shape.
func OrderToResponse(o order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		items = append(items, orderItemToResponse(item))
	}

	return OrderResponse{
		ID:         o.ID,
		FirstName:  o.FirstName,
		LastName:   o.LastName,
		Email:      o.Email,
		Address:    o.Address,
		Zipcode:    o.Zipcode,
		Place:      o.Place,
		Phone:      o.Phone,
		PaymentRef: o.PaymentRef,
		PaidAmount: o.PaidAmount.StringFixed(2),
		Currency:   o.Currency.String(),
		Items:      items,
	}
}

// OrdersToResponse converts a slice of orders to their wire shape.
func OrdersToResponse(orders []order.Order) []OrderResponse {
	result := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, OrderToResponse(o))
	}

	return result
}

func orderItemToResponse(item orderitem.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		Product:   productToResponse(item.Product),
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Price:     item.Price.StringFixed(2),
	}
}

func productToResponse(p *product.Product) *ProductResponse {
	if p == nil {
		return nil
	}

	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Image:       p.Image,
		Thumbnail:   p.Thumbnail,
	}
}
