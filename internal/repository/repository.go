package repository

import (
	"context"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
)

// ProductRepository persists products. Implementations return
// apperrors.NotFound for unknown ids and apperrors.Persistence for backend
// failures.
type ProductRepository interface {
	// List returns the page selected by q and the number of products matching
	// q's filter before pagination.
	List(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int, error)

	GetByID(ctx context.Context, id string) (*domain.Product, error)

	Create(ctx context.Context, p *domain.Product) error

	// Update loads the product, applies mutate and stores the result. An error
	// from mutate aborts the write and is returned unchanged.
	Update(ctx context.Context, id string, mutate func(*domain.Product) error) (*domain.Product, error)

	Delete(ctx context.Context, id string) error
}

// CartRepository persists carts.
type CartRepository interface {
	Create(ctx context.Context, c *domain.Cart) error

	GetByID(ctx context.Context, id string) (*domain.Cart, error)

	// Update loads the cart, applies mutate and stores the result. An error
	// from mutate aborts the write and is returned unchanged.
	Update(ctx context.Context, id string, mutate func(*domain.Cart) error) (*domain.Cart, error)
}
