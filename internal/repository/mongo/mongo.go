// Package mongo implements the repositories on a MongoDB database. Documents
// are keyed by the service-assigned string id stored in _id.
package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	apperrors "github.com/Cleyssonfreitas/coderhouse-aula39/pkg/errors"
)

// Collection names.
const (
	ProductsCollection = "products"
	CartsCollection    = "carts"
)

// translate maps driver errors onto the application taxonomy.
func translate(err error, resource, id, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.NotFound(resource, id)
	case mongo.IsDuplicateKeyError(err):
		return apperrors.AlreadyExists(resource, "id", id)
	default:
		return apperrors.Persistence(op, err)
	}
}
