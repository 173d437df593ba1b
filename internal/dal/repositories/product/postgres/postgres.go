package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/checkout/internal/dal/postgres"
	"github.com/corray333/backend-labs/checkout/internal/service/models/product"
	"github.com/shopspring/decimal"
)

// ProductDal represents the product data access layer model.
type ProductDal struct {
	Id          int64     `db:"id"`
	CategoryId  int64     `db:"category_id"`
	Name        string    `db:"name"`
	Slug        string    `db:"slug"`
	Description string    `db:"description"`
	Price       string    `db:"price"`
	Image       string    `db:"image"`
	Thumbnail   string    `db:"thumbnail"`
	CreatedAt   time.Time `db:"created_at"`
}

// ToModel converts ProductDal to the service layer Product model.
func (p *ProductDal) ToModel() (*product.Product, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product price: %w", err)
	}

	return &product.Product{
		ID:          p.Id,
		CategoryID:  p.CategoryId,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       price,
		Image:       p.Image,
		Thumbnail:   p.Thumbnail,
		CreatedAt:   p.CreatedAt,
	}, nil
}

// PostgresProductRepository is a read-only Postgres product repository.
// The checkout core never mutates the catalog.
type PostgresProductRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresProductRepository creates a new Postgres product repository.
func NewPostgresProductRepository(conn postgres.GenericConn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Query retrieves products based on filter criteria.
func (r *PostgresProductRepository) Query(
	ctx context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	query := r.sb.
		Select(
			"id",
			"category_id",
			"name",
			"slug",
			"description",
			"price::text",
			"image",
			"thumbnail",
			"created_at",
		).
		From("products").
		OrderBy("id")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
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
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var dal ProductDal
		err := rows.Scan(
			&dal.Id,
			&dal.CategoryId,
			&dal.Name,
			&dal.Slug,
			&dal.Description,
			&dal.Price,
			&dal.Image,
			&dal.Thumbnail,
			&dal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert product dal to model: %w", err)
		}

		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
