package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/productvote/catalog-service/internal/core/ports"
)

// FilterBuilder builds MongoDB match filters fluently.
type FilterBuilder struct {
	filter bson.M
}

// NewFilter creates an empty FilterBuilder (matches all documents).
func NewFilter() *FilterBuilder {
	return &FilterBuilder{filter: bson.M{}}
}

// Eq adds an equality condition.
func (f *FilterBuilder) Eq(field string, value any) *FilterBuilder {
	f.filter[field] = value
	return f
}

// Ne adds a not-equal condition. Documents missing the field also match.
func (f *FilterBuilder) Ne(field string, value any) *FilterBuilder {
	f.filter[field] = bson.M{"$ne": value}
	return f
}

// EqIf adds an equality condition only when value is non-empty.
func (f *FilterBuilder) EqIf(field, value string) *FilterBuilder {
	if value != "" {
		f.filter[field] = value
	}
	return f
}

// Flag filters on a boolean field that is absent until first set. A nil
// want adds nothing; false matches both absent and false.
func (f *FilterBuilder) Flag(field string, want *bool) *FilterBuilder {
	switch {
	case want == nil:
	case *want:
		f.Eq(field, true)
	default:
		f.Ne(field, true)
	}
	return f
}

// Build returns the final bson.M filter.
func (f *FilterBuilder) Build() bson.M {
	return f.filter
}

// byID starts a filter matching one document by its identifier.
func byID(oid primitive.ObjectID) *FilterBuilder {
	return NewFilter().Eq("_id", oid)
}

// productFilter translates a ProductFilter into a Products match filter.
func productFilter(pf ports.ProductFilter) bson.M {
	return NewFilter().
		EqIf("ownerEmail", pf.OwnerEmail).
		EqIf("status", string(pf.Status)).
		Flag("isFeatured", pf.Featured).
		Flag("reported", pf.Reported).
		Build()
}
