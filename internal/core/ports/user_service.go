package ports

import (
	"context"

	"github.com/productvote/catalog-service/internal/core/domain"
)

// RegisterUserInput carries the fields a client may set on registration.
type RegisterUserInput struct {
	Name     string
	Email    string
	PhotoURL string
}

// RegisterUserResult is returned by Register. User is nil when the email was
// already registered.
type RegisterUserResult struct {
	User    *domain.User
	Created bool
}

type UserService interface {
	Register(ctx context.Context, in RegisterUserInput) (*RegisterUserResult, error)
	List(ctx context.Context) ([]domain.User, error)
}
