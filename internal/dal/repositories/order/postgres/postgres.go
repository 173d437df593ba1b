package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/checkout/internal/dal/postgres"
	"github.com/corray333/backend-labs/checkout/internal/service/models/currency"
	"github.com/corray333/backend-labs/checkout/internal/service/models/order"
	"github.com/corray333/backend-labs/checkout/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id         int64     `db:"id"`
	CustomerId int64     `db:"customer_id"`
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	Email      string    `db:"email"`
	Address    string    `db:"address"`
	Zipcode    string    `db:"zipcode"`
	Place      string    `db:"place"`
	Phone      string    `db:"phone"`
	PaymentRef string    `db:"payment_ref"`
	PaidAmount string    `db:"paid_amount"`
	Currency   string    `db:"currency"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	cur, err := currency.ParseCurrency(o.Currency)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(o.PaidAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse paid amount: %w", err)
	}

	return &order.Order{
		ID:         o.Id,
		CustomerID: o.CustomerId,
		FirstName:  o.FirstName,
		LastName:   o.LastName,
		Email:      o.Email,
		Address:    o.Address,
		Zipcode:    o.Zipcode,
		Place:      o.Place,
		Phone:      o.Phone,
		PaymentRef: o.PaymentRef,
		PaidAmount: amount,
		Currency:   cur,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
		OrderItems: []orderitem.OrderItem{}, // Will be populated separately
	}, nil
}

// OrderDalFromModel converts the service layer Order model to OrderDal.
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		Id:         o.ID,
		CustomerId: o.CustomerID,
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
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert writes a single order header and returns it with its assigned ID.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (*order.Order, error) {
	dal := OrderDalFromModel(&o)

	sql, args, err := r.sb.
		Insert("orders").
		Columns(
			"customer_id",
			"first_name",
			"last_name",
			"email",
			"address",
			"zipcode",
			"place",
			"phone",
			"payment_ref",
			"paid_amount",
			"currency",
			"created_at",
			"updated_at",
		).
		Values(
			dal.CustomerId,
			dal.FirstName,
			dal.LastName,
			dal.Email,
			dal.Address,
			dal.Zipcode,
			dal.Place,
			dal.Phone,
			dal.PaymentRef,
			dal.PaidAmount,
			dal.Currency,
			dal.CreatedAt,
			dal.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&o.ID); err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	return &o, nil
}

// Query retrieves orders based on filter criteria.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	query := r.sb.
		Select(
			"id",
			"customer_id",
			"first_name",
			"last_name",
			"email",
			"address",
			"zipcode",
			"place",
			"phone",
			"payment_ref",
			"paid_amount::text",
			"currency",
			"created_at",
			"updated_at",
		).
		From("orders").
		OrderBy("id DESC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.CustomerIds) > 0 {
		query = query.Where(sq.Eq{"customer_id": filter.CustomerIds})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.Id,
			&dal.CustomerId,
			&dal.FirstName,
			&dal.LastName,
			&dal.Email,
			&dal.Address,
			&dal.Zipcode,
			&dal.Place,
			&dal.Phone,
			&dal.PaymentRef,
			&dal.PaidAmount,
			&dal.Currency,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
