package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/repository"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/database"
	apperrors "github.com/Cleyssonfreitas/coderhouse-aula39/pkg/errors"
)

// CartRepository implements repository.CartRepository using PostgreSQL.
// Line items are stored as a JSONB array on the cart row.
type CartRepository struct {
	db database.DBTX
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(db database.DBTX) *CartRepository {
	return &CartRepository{db: db}
}

var _ repository.CartRepository = (*CartRepository)(nil)

// Create inserts a new cart.
func (r *CartRepository) Create(ctx context.Context, c *domain.Cart) (err error) {
	query := "INSERT INTO carts (id, products, created_at, updated_at) VALUES ($1, $2, $3, $4)"

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "CreateCart", query)
	defer func() { end(err) }()

	items, err := marshalItems(c.Products)
	if err != nil {
		return err
	}
	if _, err = r.db.Exec(ctx, query, c.ID, items, c.CreatedAt, c.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("cart", "id", c.ID)
		}
		return apperrors.Persistence("insert cart", err)
	}
	return nil
}

// GetByID retrieves a cart by its ID.
func (r *CartRepository) GetByID(ctx context.Context, id string) (_ *domain.Cart, err error) {
	query := "SELECT id, products, created_at, updated_at FROM carts WHERE id = $1"

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "GetCart", query)
	defer func() { end(err) }()

	return scanCart(r.db.QueryRow(ctx, query, id), id)
}

// Update locks the cart row, applies mutate and writes the result in one
// transaction.
func (r *CartRepository) Update(ctx context.Context, id string, mutate func(*domain.Cart) error) (_ *domain.Cart, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "UpdateCart", "SELECT ... FOR UPDATE; UPDATE carts")
	defer func() { end(err) }()

	var updated *domain.Cart
	err = inTx(ctx, r.db, func(tx pgx.Tx) error {
		c, err := scanCart(tx.QueryRow(ctx,
			"SELECT id, products, created_at, updated_at FROM carts WHERE id = $1 FOR UPDATE", id), id)
		if err != nil {
			return err
		}
		if err := mutate(c); err != nil {
			return err
		}
		items, err := marshalItems(c.Products)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			"UPDATE carts SET products = $1, updated_at = $2 WHERE id = $3",
			items, c.UpdatedAt, id,
		); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, persistence("update cart", err)
	}
	return updated, nil
}

func scanCart(row pgx.Row, id string) (*domain.Cart, error) {
	var (
		c     domain.Cart
		items []byte
	)
	if err := row.Scan(&c.ID, &items, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("cart", id)
		}
		return nil, apperrors.Persistence("scan cart", err)
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &c.Products); err != nil {
			return nil, apperrors.Persistence("decode cart products", err)
		}
	}
	if c.Products == nil {
		c.Products = []domain.LineItem{}
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func marshalItems(items []domain.LineItem) ([]byte, error) {
	if items == nil {
		items = []domain.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, apperrors.Persistence("encode cart products", err)
	}
	return data, nil
}
