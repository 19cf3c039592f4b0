package mongo

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/repository"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/database"
	apperrors "github.com/Cleyssonfreitas/coderhouse-aula39/pkg/errors"
)

// ProductRepository stores products in the "products" collection.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a product repository on db.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(ProductsCollection)}
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// productFilter translates a listing filter into a query document.
func productFilter(f domain.ProductFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Category) + "$", Options: "i"}
	}
	switch f.Availability {
	case domain.AvailabilityInStock:
		filter["stock"] = bson.M{"$gt": 0}
	case domain.AvailabilityOutOfStock:
		filter["stock"] = bson.M{"$lte": 0}
	}
	return filter
}

func productSort(order domain.SortOrder) bson.D {
	switch order {
	case domain.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case domain.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return nil
	}
}

func (r *ProductRepository) List(ctx context.Context, q domain.ProductQuery) (_ []domain.Product, _ int, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongoDB, "ListProducts", "products.find")
	defer func() { end(err) }()

	filter := productFilter(q.Filter)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Persistence("count products", err)
	}

	opts := options.Find().
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	if s := productSort(q.Sort); s != nil {
		opts.SetSort(s)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperrors.Persistence("list products", err)
	}
	products := []domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, apperrors.Persistence("decode products", err)
	}
	return products, int(total), nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongoDB, "GetProduct", "products.findOne")
	defer func() { end(err) }()

	var p domain.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err, "product", id, "get product")
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongoDB, "CreateProduct", "products.insertOne")
	defer func() { end(err) }()

	_, err = r.coll.InsertOne(ctx, p)
	return translate(err, "product", p.ID, "create product")
}

func (r *ProductRepository) Update(ctx context.Context, id string, mutate func(*domain.Product) error) (*domain.Product, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(p); err != nil {
		return nil, err
	}
	if err := replace(ctx, r.coll, "ReplaceProduct", "product", id, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongoDB, "DeleteProduct", "products.deleteOne")
	defer func() { end(err) }()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Persistence("delete product", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// replace overwrites the document with the given id. A concurrent delete
// between load and replace surfaces as NotFound.
func replace(ctx context.Context, coll *mongo.Collection, operation, resource, id string, doc any) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemMongoDB, operation, coll.Name()+".replaceOne")
	defer func() { end(err) }()

	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return apperrors.Persistence("replace "+resource, err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound(resource, id)
	}
	return nil
}
