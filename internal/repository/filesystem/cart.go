package filesystem

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/repository"
)

// CartsFile is the collection file name inside the data directory.
const CartsFile = "carts.json"

// CartRepository keeps carts in <dataDir>/carts.json.
type CartRepository struct {
	coll *Collection[domain.Cart]
}

// NewCartRepository creates a cart repository rooted at dataDir.
func NewCartRepository(dataDir string, logger *slog.Logger) *CartRepository {
	return &CartRepository{
		coll: NewCollection(filepath.Join(dataDir, CartsFile), "cart",
			func(c *domain.Cart) string { return c.ID }, logger),
	}
}

var _ repository.CartRepository = (*CartRepository)(nil)

func (r *CartRepository) Create(ctx context.Context, c *domain.Cart) error {
	return r.coll.Create(ctx, *c)
}

func (r *CartRepository) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	return r.coll.Read(ctx, id)
}

func (r *CartRepository) Update(ctx context.Context, id string, mutate func(*domain.Cart) error) (*domain.Cart, error) {
	return r.coll.Update(ctx, id, mutate)
}
