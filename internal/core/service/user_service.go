package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/productvote/catalog-service/internal/core/domain"
	"github.com/productvote/catalog-service/internal/core/ports"
)

// UserService implements registration and listing of accounts.
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger, now: time.Now}
}

// Register creates the account for in.Email once. A repeat registration
// writes nothing and returns Created=false.
func (s *UserService) Register(ctx context.Context, in ports.RegisterUserInput) (*ports.RegisterUserResult, error) {
	if in.Email == "" {
		return nil, domain.ErrEmailRequired
	}

	user := &domain.User{
		Name:      in.Name,
		Email:     in.Email,
		PhotoURL:  in.PhotoURL,
		Role:      domain.RoleUser,
		CreatedAt: s.now().UTC(),
	}

	created, err := s.repo.CreateIfAbsent(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			s.logger.Debug().Str("email", in.Email).Msg("user already registered")
			return &ports.RegisterUserResult{Created: false}, nil
		}
		s.logger.Error().Err(err).Str("email", in.Email).Msg("failed to register user")
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("user registered")
	return &ports.RegisterUserResult{User: created, Created: true}, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, err
	}
	return users, nil
}
