package ports

import (
	"context"

	"github.com/productvote/catalog-service/internal/core/domain"
)

// ProductService defines use-case operations for the catalog.
type ProductService interface {
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	ListAccepted(ctx context.Context) ([]domain.Product, error)
	ListFeatured(ctx context.Context) ([]domain.Product, error)
	ListReported(ctx context.Context) ([]domain.Product, error)

	Vote(ctx context.Context, id, userEmail string) (*domain.Product, error)
	Replace(ctx context.Context, id string, changes map[string]any) (*domain.UpdateResult, error)

	Accept(ctx context.Context, id string) (*domain.UpdateResult, error)
	Reject(ctx context.Context, id string) (*domain.UpdateResult, error)
	Feature(ctx context.Context, id string) (*domain.UpdateResult, error)
	Report(ctx context.Context, id string) (*domain.UpdateResult, error)

	Delete(ctx context.Context, id string) (int64, error)
}

// VoteCache remembers which users voted on which product so repeated votes
// can be rejected without a store round-trip. It is advisory; the repository
// remains authoritative.
type VoteCache interface {
	HasVoted(ctx context.Context, productID, email string) (bool, error)
	MarkVoted(ctx context.Context, productID, email string) error
	Forget(ctx context.Context, productID string) error
}
