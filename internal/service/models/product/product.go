package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a read-only snapshot of a catalog product. The checkout core
// only checks existence and serializes product details into order reads;
// catalog management lives elsewhere.
type Product struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"category_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Thumbnail   string          `json:"thumbnail"`
	CreatedAt   time.Time       `json:"created_at"`
}

// QueryProductsModel represents filter parameters for querying products.
type QueryProductsModel struct {
	Ids    []int64 `json:"ids,omitempty"`
	Limit  int     `json:"limit,omitempty"`
	Offset int     `json:"offset,omitempty"`
}
