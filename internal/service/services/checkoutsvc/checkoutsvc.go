package checkoutsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/corray333/backend-labs/checkout/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/checkout/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/checkout/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/checkout/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/backend-labs/checkout/internal/dal/postgres"
	"github.com/corray333/backend-labs/checkout/internal/dal/uow"
	"github.com/corray333/backend-labs/checkout/internal/payment"
	"github.com/corray333/backend-labs/checkout/internal/service/models/cart"
	"github.com/corray333/backend-labs/checkout/internal/service/models/currency"
	"github.com/corray333/backend-labs/checkout/internal/service/models/order"
	"github.com/corray333/backend-labs/checkout/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/checkout/internal/service/models/outbox"
	"github.com/corray333/backend-labs/checkout/internal/service/models/product"
	"github.com/corray333/backend-labs/checkout/pkg/metrics"
)

const (
	orderPlacedQueue  = "checkout.order.placed"
	outboxMaxRetries  = 10
	chargeDescription = "Purchase from checkout-svc"
)

// unitOfWork scopes the repositories touched by one checkout to a single
// transaction.
type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// CheckoutService orchestrates the checkout transaction: validate the
// cart, price it, charge the gateway, persist the order atomically.
type CheckoutService struct {
	newUOW      func() unitOfWork
	productRepo iproductrepo.IProductRepository
	gateway     payment.Gateway
	currency    currency.Currency
	metrics     *metrics.CheckoutMetrics
}

// CheckoutResult is the outcome of a completed checkout: the persisted
// order and the confirmation token the client finishes the payment with.
type CheckoutResult struct {
	Order        order.Order
	ClientSecret string
}

// option is a function that configures the CheckoutService.
type option func(*CheckoutService)

// MustNewCheckoutService creates a new CheckoutService.
func MustNewCheckoutService(opts ...option) *CheckoutService {
	s := &CheckoutService{
		currency: currency.CurrencyUSD,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		panic("checkoutsvc: no unit of work configured")
	}
	if s.gateway == nil {
		panic("checkoutsvc: no payment gateway configured")
	}
	if s.productRepo == nil {
		panic("checkoutsvc: no product repository configured")
	}

	return s
}

// WithPostgresClient wires the unit of work to the given Postgres client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CheckoutService) {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithProductRepository sets the product catalog repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductRepository(repo iproductrepo.IProductRepository) option {
	return func(s *CheckoutService) {
		s.productRepo = repo
	}
}

// WithGateway sets the payment gateway.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithGateway(gateway payment.Gateway) option {
	return func(s *CheckoutService) {
		s.gateway = gateway
	}
}

// WithCurrency sets the deployment currency charged for every order.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCurrency(cur currency.Currency) option {
	return func(s *CheckoutService) {
		s.currency = cur
	}
}

// WithMetrics sets the checkout metrics sink.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMetrics(m *metrics.CheckoutMetrics) option {
	return func(s *CheckoutService) {
		s.metrics = m
	}
}

// WithUnitOfWorkFactory overrides the unit of work factory, used in tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *CheckoutService) {
		s.newUOW = factory
	}
}

// Checkout runs the full checkout transaction for one customer cart.
// Steps 1-2 (validation, pricing) are pure; the charge and the order write
// are the only side effects. At most one charge call is made per attempt;
// persistence happens only after the gateway confirmed the charge.
func (s *CheckoutService) Checkout(
	ctx context.Context,
	customerID int64,
	c cart.Cart,
) (*CheckoutResult, error) {
	start := time.Now()

	result, err := s.checkout(ctx, customerID, c)
	s.observe(err, time.Since(start))

	return result, err
}

func (s *CheckoutService) checkout(
	ctx context.Context,
	customerID int64,
	c cart.Cart,
) (*CheckoutResult, error) {
	if err := s.validateCart(ctx, c); err != nil {
		return nil, err
	}

	total := c.Total()
	amountMinor := c.TotalMinorUnits()

	res, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		AmountMinor:   amountMinor,
		Currency:      s.currency,
		PaymentMethod: c.PaymentMethod,
		Description:   chargeDescription,
		Metadata: map[string]string{
			"customer_id": strconv.FormatInt(customerID, 10),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("charge aborted: %w", err)
	}

	if payErr := res.Err(); payErr != nil {
		return nil, payErr
	}

	now := time.Now()
	o := order.Order{
		CustomerID: customerID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Address:    c.Address,
		Zipcode:    c.Zipcode,
		Place:      c.Place,
		Phone:      c.Phone,
		PaymentRef: res.TransactionID,
		PaidAmount: total,
		Currency:   s.currency,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, item := range c.Items {
		o.OrderItems = append(o.OrderItems, orderitem.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	persisted, err := s.persistOrder(ctx, o)
	if err != nil {
		// The charge is confirmed but the order is gone: compensate.
		s.refund(ctx, res.TransactionID)

		return nil, fmt.Errorf("%w: %w", ErrOrderNotPersisted, err)
	}

	s.metrics.AddCharged(amountMinor)

	return &CheckoutResult{
		Order:        *persisted,
		ClientSecret: res.ClientSecret,
	}, nil
}

// validateCart rejects empty carts, malformed items and references to
// products that do not exist. No side effects.
func (s *CheckoutService) validateCart(ctx context.Context, c cart.Cart) error {
	if len(c.Items) == 0 {
		return ErrEmptyCart
	}

	ids := make([]int64, 0, len(c.Items))
	for _, item := range c.Items {
		if item.Quantity <= 0 {
			return &InvalidItemError{ProductID: item.ProductID, Field: "quantity"}
		}
		if !item.Price.IsPositive() {
			return &InvalidItemError{ProductID: item.ProductID, Field: "price"}
		}
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.Query(ctx, &product.QueryProductsModel{Ids: ids})
	if err != nil {
		return fmt.Errorf("failed to look up products: %w", err)
	}

	known := make(map[int64]struct{}, len(products))
	for _, p := range products {
		known[p.ID] = struct{}{}
	}
	for _, item := range c.Items {
		if _, ok := known[item.ProductID]; !ok {
			return &UnknownProductError{ProductID: item.ProductID}
		}
	}

	return nil
}

// persistOrder writes the order header, its items and the order-placed
// outbox event in one transaction.
func (s *CheckoutService) persistOrder(ctx context.Context, o order.Order) (*order.Order, error) {
	work := s.newUOW()

	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := work.Rollback(ctx); err != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", err)
		}
	}()

	inserted, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return nil, err
	}

	items := make([]orderitem.OrderItem, len(o.OrderItems))
	copy(items, o.OrderItems)
	for i := range items {
		items[i].OrderID = inserted.ID
	}

	items, err = work.OrderItemRepository().BulkInsert(ctx, items)
	if err != nil {
		return nil, err
	}
	inserted.OrderItems = items

	payload, err := json.Marshal(inserted)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order event: %w", err)
	}

	now := time.Now()
	err = work.OutboxRepository().Insert(ctx, outbox.Message{
		QueueName:   orderPlacedQueue,
		RoutingKey:  orderPlacedQueue,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  outboxMaxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true

	return inserted, nil
}

// refund compensates a confirmed charge whose order could not be stored.
func (s *CheckoutService) refund(ctx context.Context, transactionID string) {
	if err := s.gateway.Refund(ctx, transactionID); err != nil {
		slog.ErrorContext(ctx, "Refund after persistence failure did not go through",
			"transaction_id", transactionID,
			"error", err,
		)

		return
	}

	slog.InfoContext(ctx, "Charge refunded after persistence failure",
		"transaction_id", transactionID,
	)
}

func (s *CheckoutService) observe(err error, elapsed time.Duration) {
	outcome := "completed"
	switch {
	case err == nil:
	case isPaymentError(err):
		outcome = "rejected_payment"
	default:
		outcome = "rejected"
	}

	s.metrics.ObserveOutcome(outcome, elapsed.Seconds())
}

func isPaymentError(err error) bool {
	var payErr *payment.Error

	return errors.As(err, &payErr)
}

// GetOrders retrieves orders with their items and product details.
func (s *CheckoutService) GetOrders(
	ctx context.Context,
	query *order.QueryOrdersModel,
) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	itemQuery := &orderitem.QueryOrderItemsModel{}
	for _, o := range orders {
		itemQuery.OrderIds = append(itemQuery.OrderIds, o.ID)
	}
	items, err := work.OrderItemRepository().Query(ctx, itemQuery)
	if err != nil {
		return nil, err
	}

	if err := s.attachProducts(ctx, items); err != nil {
		return nil, err
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].OrderItems = append(orders[i].OrderItems, item)
			}
		}
	}

	return orders, nil
}

// attachProducts resolves catalog details for the products referenced by
// the given items.
func (s *CheckoutService) attachProducts(ctx context.Context, items []orderitem.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	seen := make(map[int64]struct{})
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; !ok {
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.productRepo.Query(ctx, &product.QueryProductsModel{Ids: ids})
	if err != nil {
		return fmt.Errorf("failed to resolve products: %w", err)
	}

	byID := make(map[int64]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for i := range items {
		if p, ok := byID[items[i].ProductID]; ok {
			items[i].Product = &p
		}
	}

	return nil
}
