package ports

import (
	"context"

	"github.com/productvote/catalog-service/internal/core/domain"
)

// ProductFilter selects products by exact field match. Zero values are
// ignored; a nil pointer means "do not filter on this flag".
type ProductFilter struct {
	OwnerEmail string
	Status     domain.ProductStatus
	Featured   *bool
	Reported   *bool
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	Insert(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Find(ctx context.Context, filter ProductFilter) ([]domain.Product, error)

	// AddVote appends email to votedUsers and increments votes in one atomic
	// update that only matches when email is not already present. It returns
	// the document after the update, domain.ErrAlreadyVoted when email had
	// voted, or domain.ErrProductNotFound.
	AddVote(ctx context.Context, id, email string) (*domain.Product, error)

	// Update sets the given fields on the product. Keys are document field
	// names.
	Update(ctx context.Context, id string, fields map[string]any) (*domain.UpdateResult, error)

	// Delete removes the product and returns the number of deleted documents.
	Delete(ctx context.Context, id string) (int64, error)
}
