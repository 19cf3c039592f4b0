package redis

import (
	"context"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/repository"
)

// ProductRepository stores products in the ProductsKey hash.
type ProductRepository struct {
	store *hashStore[domain.Product]
}

// NewProductRepository creates a Redis-backed product repository.
func NewProductRepository(client *redis.Client) *ProductRepository {
	return &ProductRepository{store: &hashStore[domain.Product]{
		client:   client,
		key:      ProductsKey,
		resource: "product",
		idOf:     func(p *domain.Product) string { return p.ID },
	}}
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// List loads the whole hash and evaluates q in memory. Hash order is
// unspecified, so products are first put in creation order.
func (r *ProductRepository) List(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int, error) {
	all, err := r.store.all(ctx, "ListProducts")
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	page, total := repository.EvaluateProducts(all, q)
	return page, total, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.store.get(ctx, "GetProduct", id)
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return r.store.create(ctx, "CreateProduct", p)
}

func (r *ProductRepository) Update(ctx context.Context, id string, mutate func(*domain.Product) error) (*domain.Product, error) {
	return r.store.update(ctx, "UpdateProduct", id, mutate)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.store.delete(ctx, "DeleteProduct", id)
}
