package ports

import (
	"context"

	"github.com/productvote/catalog-service/internal/core/domain"
)

// UserRepository defines persistence operations for registered users.
type UserRepository interface {
	// CreateIfAbsent inserts user unless a document with the same email
	// exists, in one atomic operation. It returns domain.ErrUserExists when
	// nothing was written.
	CreateIfAbsent(ctx context.Context, user *domain.User) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
}
