package filesystem

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/repository"
)

// ProductsFile is the collection file name inside the data directory.
const ProductsFile = "products.json"

// ProductRepository keeps products in <dataDir>/products.json.
type ProductRepository struct {
	coll *Collection[domain.Product]
}

// NewProductRepository creates a product repository rooted at dataDir.
func NewProductRepository(dataDir string, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		coll: NewCollection(filepath.Join(dataDir, ProductsFile), "product",
			func(p *domain.Product) string { return p.ID }, logger),
	}
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) List(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int, error) {
	all, err := r.coll.ReadAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	page, total := repository.EvaluateProducts(all, q)
	return page, total, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.coll.Read(ctx, id)
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return r.coll.Create(ctx, *p)
}

func (r *ProductRepository) Update(ctx context.Context, id string, mutate func(*domain.Product) error) (*domain.Product, error) {
	return r.coll.Update(ctx, id, mutate)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.coll.Delete(ctx, id)
}

// Ping checks the products file is readable.
func (r *ProductRepository) Ping(ctx context.Context) error {
	return r.coll.Ping(ctx)
}
