package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/repository"
)

// CartRepository stores carts in the CartsKey hash.
type CartRepository struct {
	store *hashStore[domain.Cart]
}

// NewCartRepository creates a Redis-backed cart repository.
func NewCartRepository(client *redis.Client) *CartRepository {
	return &CartRepository{store: &hashStore[domain.Cart]{
		client:   client,
		key:      CartsKey,
		resource: "cart",
		idOf:     func(c *domain.Cart) string { return c.ID },
	}}
}

var _ repository.CartRepository = (*CartRepository)(nil)

func (r *CartRepository) Create(ctx context.Context, c *domain.Cart) error {
	return r.store.create(ctx, "CreateCart", c)
}

func (r *CartRepository) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	c, err := r.store.get(ctx, "GetCart", id)
	if err != nil {
		return nil, err
	}
	if c.Products == nil {
		c.Products = []domain.LineItem{}
	}
	return c, nil
}

func (r *CartRepository) Update(ctx context.Context, id string, mutate func(*domain.Cart) error) (*domain.Cart, error) {
	return r.store.update(ctx, "UpdateCart", id, mutate)
}
