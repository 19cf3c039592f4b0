package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/repository"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/database"
	apperrors "github.com/Cleyssonfreitas/coderhouse-aula39/pkg/errors"
)

const productColumns = "id, name, description, price, stock, category, thumbnails, created_at, updated_at"

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// productWhere builds the WHERE clause for f. Placeholders start at $1.
func productWhere(f domain.ProductFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	if f.Category != "" {
		args = append(args, f.Category)
		conditions = append(conditions, fmt.Sprintf("lower(category) = lower($%d)", len(args)))
	}
	switch f.Availability {
	case domain.AvailabilityInStock:
		conditions = append(conditions, "stock > 0")
	case domain.AvailabilityOutOfStock:
		conditions = append(conditions, "stock <= 0")
	}
	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// productOrder keeps creation order as the tiebreak so equal prices list in
// stored order.
func productOrder(order domain.SortOrder) string {
	switch order {
	case domain.SortPriceAsc:
		return "ORDER BY price ASC, created_at, id"
	case domain.SortPriceDesc:
		return "ORDER BY price DESC, created_at, id"
	default:
		return "ORDER BY created_at, id"
	}
}

// List returns one page of matching products and the number of matches.
func (r *ProductRepository) List(ctx context.Context, q domain.ProductQuery) (_ []domain.Product, _ int, err error) {
	where, args := productWhere(q.Filter)
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		productColumns, where, productOrder(q.Sort), len(args)+1, len(args)+2,
	)

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, apperrors.Persistence("list products", err)
	}
	defer rows.Close()

	var (
		products = []domain.Product{}
		total    int
	)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category,
			&p.Thumbnails, &p.CreatedAt, &p.UpdatedAt, &total,
		); err != nil {
			return nil, 0, apperrors.Persistence("scan product row", err)
		}
		normalizeProduct(&p)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Persistence("iterate product rows", err)
	}

	// A page past the end has no rows to carry the window count.
	if len(products) == 0 && q.Offset() > 0 {
		countQuery := "SELECT count(*) FROM products " + where
		if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
			return nil, 0, apperrors.Persistence("count products", err)
		}
	}

	return products, total, nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = $1"

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "GetProduct", query)
	defer func() { end(err) }()

	return scanProduct(r.db.QueryRow(ctx, query, id), id)
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "CreateProduct", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.Category,
		thumbnailsOrEmpty(p.Thumbnails), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "id", p.ID)
		}
		return apperrors.Persistence("insert product", err)
	}
	return nil
}

// Update locks the row, applies mutate and writes the result in one
// transaction.
func (r *ProductRepository) Update(ctx context.Context, id string, mutate func(*domain.Product) error) (_ *domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "UpdateProduct", "SELECT ... FOR UPDATE; UPDATE products")
	defer func() { end(err) }()

	var updated *domain.Product
	err = inTx(ctx, r.db, func(tx pgx.Tx) error {
		p, err := scanProduct(tx.QueryRow(ctx,
			"SELECT "+productColumns+" FROM products WHERE id = $1 FOR UPDATE", id), id)
		if err != nil {
			return err
		}
		if err := mutate(p); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE products
			SET name = $1, description = $2, price = $3, stock = $4, category = $5,
			    thumbnails = $6, updated_at = $7
			WHERE id = $8`,
			p.Name, p.Description, p.Price, p.Stock, p.Category,
			thumbnailsOrEmpty(p.Thumbnails), p.UpdatedAt, id,
		)
		if err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, persistence("update product", err)
	}
	return updated, nil
}

// Delete removes a product by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	query := "DELETE FROM products WHERE id = $1"

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "DeleteProduct", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return apperrors.Persistence("delete product", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

func scanProduct(row pgx.Row, id string) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category,
		&p.Thumbnails, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, apperrors.Persistence("scan product", err)
	}
	normalizeProduct(&p)
	return &p, nil
}

func normalizeProduct(p *domain.Product) {
	p.Thumbnails = thumbnailsOrEmpty(p.Thumbnails)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
}

func thumbnailsOrEmpty(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}
