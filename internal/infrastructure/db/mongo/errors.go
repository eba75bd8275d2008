package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/productvote/catalog-service/internal/core/domain"
)

// storeError classifies a driver error as retryable (store unavailable) or
// internal. op names the failed operation, e.g. "find products".
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, mongo.ErrClientDisconnected),
		mongo.IsTimeout(err),
		mongo.IsNetworkError(err):
		return domain.Unavailable(op, err)
	default:
		return domain.Internal(op, err)
	}
}

// objectID parses a 24-hex identifier from a path parameter.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrInvalidID.Wrap(err)
	}
	return oid, nil
}
