package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/repository"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/database"
)

// CartRepository stores carts in the "carts" collection with line items
// embedded in the cart document.
type CartRepository struct {
	coll *mongo.Collection
}

// NewCartRepository creates a cart repository on db.
func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{coll: db.Collection(CartsCollection)}
}

var _ repository.CartRepository = (*CartRepository)(nil)

func (r *CartRepository) Create(ctx context.Context, c *domain.Cart) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongoDB, "CreateCart", "carts.insertOne")
	defer func() { end(err) }()

	_, err = r.coll.InsertOne(ctx, c)
	return translate(err, "cart", c.ID, "create cart")
}

func (r *CartRepository) GetByID(ctx context.Context, id string) (_ *domain.Cart, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongoDB, "GetCart", "carts.findOne")
	defer func() { end(err) }()

	var c domain.Cart
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err, "cart", id, "get cart")
	}
	if c.Products == nil {
		c.Products = []domain.LineItem{}
	}
	return &c, nil
}

func (r *CartRepository) Update(ctx context.Context, id string, mutate func(*domain.Cart) error) (*domain.Cart, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(c); err != nil {
		return nil, err
	}
	if err := replace(ctx, r.coll, "ReplaceCart", "cart", id, c); err != nil {
		return nil, err
	}
	return c, nil
}
