package iproductrepo

import (
	"context"

	"github.com/corray333/backend-labs/checkout/internal/service/models/product"
)

// IProductRepository is a read-only interface for the product catalog.
type IProductRepository interface {
	Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
}
