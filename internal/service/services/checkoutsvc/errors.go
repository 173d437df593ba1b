package checkoutsvc

import (
	"errors"
	"fmt"
)

// ErrEmptyCart is returned when the submitted cart has no items. The
// transport maps it to the dedicated empty-cart response body.
var ErrEmptyCart = errors.New("no items in the cart")

// ErrOrderNotPersisted marks a persistence failure that happened after the
// gateway confirmed the charge. The charge has been refunded (best effort)
// by the time this error is returned.
var ErrOrderNotPersisted = errors.New("order could not be persisted")

// UnknownProductError is returned when a cart item references a product
// that does not exist in the catalog.
type UnknownProductError struct {
	ProductID int64
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("product %d does not exist", e.ProductID)
}

// InvalidItemError is returned when a cart item carries a non-positive
// quantity or price. Schema validation catches these earlier; this is the
// service-level guard for callers that bypass the transport.
type InvalidItemError struct {
	ProductID int64
	Field     string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("item for product %d has invalid %s", e.ProductID, e.Field)
}
