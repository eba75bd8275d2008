package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/productvote/catalog-service/internal/core/domain"
	"github.com/productvote/catalog-service/internal/core/ports"
)

const collectionProducts = "Products"

type ProductRepository struct {
	col     *mongo.Collection
	timeout time.Duration
}

// NewProductRepository returns a repository over the Products collection.
// Every operation is bounded by timeout (defaultTimeout when not positive).
func NewProductRepository(db *mongo.Database, timeout time.Duration) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts), timeout: opTimeout(timeout)}
}

var _ ports.ProductRepository = (*ProductRepository)(nil)

// productDocument is the stored shape. Fields the catalog does not model are
// kept in Extra and written back inline.
type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name,omitempty"`
	Description string             `bson:"description,omitempty"`
	OwnerEmail  string             `bson:"ownerEmail,omitempty"`
	Votes       *int64             `bson:"votes,omitempty"`
	VotedUsers  []string           `bson:"votedUsers"`
	Status      string             `bson:"status,omitempty"`
	IsFeatured  *bool              `bson:"isFeatured,omitempty"`
	Reported    *bool              `bson:"reported,omitempty"`
	Extra       map[string]any     `bson:",inline"`
}

func toProductDocument(p *domain.Product) productDocument {
	voted := p.VotedUsers
	if voted == nil {
		voted = []string{}
	}
	doc := productDocument{
		Name:        p.Name,
		Description: p.Description,
		OwnerEmail:  p.OwnerEmail,
		Votes:       p.Votes,
		VotedUsers:  voted,
		Status:      string(p.Status),
		IsFeatured:  p.IsFeatured,
		Reported:    p.Reported,
	}
	if len(p.Attributes) > 0 {
		doc.Extra = make(map[string]any, len(p.Attributes))
		for k, v := range p.Attributes {
			if !domain.IsProductKey(k) {
				doc.Extra[k] = v
			}
		}
	}
	return doc
}

func (d *productDocument) toDomain() domain.Product {
	p := domain.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		OwnerEmail:  d.OwnerEmail,
		Votes:       d.Votes,
		VotedUsers:  d.VotedUsers,
		Status:      domain.ProductStatus(d.Status),
		IsFeatured:  d.IsFeatured,
		Reported:    d.Reported,
	}
	if p.VotedUsers == nil {
		p.VotedUsers = []string{}
	}
	if len(d.Extra) > 0 {
		p.Attributes = make(map[string]any, len(d.Extra))
		for k, v := range d.Extra {
			p.Attributes[k] = plain(v)
		}
	}
	return p
}

// plain converts nested BSON documents and arrays into maps and slices so
// they encode as ordinary JSON.
func plain(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plain(e.Value)
		}
		return m
	case primitive.M:
		return plain(map[string]any(t))
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = plain(e)
		}
		return m
	case primitive.A:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = plain(e)
		}
		return s
	default:
		return v
	}
}

// Insert stores a new product and returns it with its generated identifier.
func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := toProductDocument(p)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, storeError("insert product", err)
	}

	created := doc.toDomain()
	return &created, nil
}

// FindByID retrieves a product by its hex identifier.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc productDocument
	if err := r.col.FindOne(ctx, byID(oid).Build()).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, storeError("find product", err)
	}
	p := doc.toDomain()
	return &p, nil
}

// Find returns every product matching filter. The result is never nil.
func (r *ProductRepository) Find(ctx context.Context, filter ports.ProductFilter) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, productFilter(filter))
	if err != nil {
		return nil, storeError("find products", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storeError("decode products", err)
	}

	out := make([]domain.Product, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// AddVote atomically increments votes and appends email to votedUsers, but
// only on a document whose votedUsers does not contain email yet.
func (r *ProductRepository) AddVote(ctx context.Context, id, email string) (*domain.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := byID(oid).Ne("votedUsers", email).Build()
	update := bson.M{
		"$inc":  bson.M{"votes": int64(1)},
		"$push": bson.M{"votedUsers": email},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		p := doc.toDomain()
		return &p, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storeError("vote on product", err)
	}

	// Nothing matched: either the product is gone or email already voted.
	n, err := r.col.CountDocuments(ctx, byID(oid).Build(), options.Count().SetLimit(1))
	if err != nil {
		return nil, storeError("count product", err)
	}
	if n == 0 {
		return nil, domain.ErrProductNotFound
	}
	return nil, domain.ErrAlreadyVoted
}

// Update applies $set with fields to the product.
func (r *ProductRepository) Update(ctx context.Context, id string, fields map[string]any) (*domain.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, byID(oid).Build(), bson.M{"$set": bson.M(fields)})
	if err != nil {
		return nil, storeError("update product", err)
	}
	return &domain.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// Delete removes the product. A missing product yields zero, not an error.
func (r *ProductRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := objectID(id)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, byID(oid).Build())
	if err != nil {
		return 0, storeError("delete product", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the indexes backing the listing queries.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "ownerEmail", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "isFeatured", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "reported", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
