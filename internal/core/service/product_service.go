package service

import (
	"context"
	"errors"
	"maps"

	"github.com/rs/zerolog"

	"github.com/productvote/catalog-service/internal/core/domain"
	"github.com/productvote/catalog-service/internal/core/ports"
)

type ProductService struct {
	repo   ports.ProductRepository
	votes  ports.VoteCache
	logger zerolog.Logger
}

func NewProductService(repo ports.ProductRepository, votes ports.VoteCache, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, votes: votes, logger: logger}
}

// Create stores a new product. The vote fields always start empty,
// whatever the client sent.
func (s *ProductService) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	product := *p
	product.ID = ""
	product.Votes = nil
	product.VotedUsers = []string{}
	if p.Attributes != nil {
		product.Attributes = maps.Clone(p.Attributes)
	}

	created, err := s.repo.Insert(ctx, &product)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, err
	}

	s.logger.Info().Str("product_id", created.ID).Str("owner_email", created.OwnerEmail).Msg("product created")
	return created, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) List(ctx context.Context, filter ports.ProductFilter) ([]domain.Product, error) {
	return s.repo.Find(ctx, filter)
}

func (s *ProductService) ListAccepted(ctx context.Context) ([]domain.Product, error) {
	return s.repo.Find(ctx, ports.ProductFilter{Status: domain.StatusAccepted})
}

func (s *ProductService) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	featured := true
	return s.repo.Find(ctx, ports.ProductFilter{Status: domain.StatusAccepted, Featured: &featured})
}

func (s *ProductService) ListReported(ctx context.Context) ([]domain.Product, error) {
	reported := true
	return s.repo.Find(ctx, ports.ProductFilter{Status: domain.StatusAccepted, Reported: &reported})
}

// Vote records one vote by userEmail. The cache only short-circuits repeat
// votes; the repository's conditional update decides.
func (s *ProductService) Vote(ctx context.Context, id, userEmail string) (*domain.Product, error) {
	if userEmail == "" {
		return nil, domain.ErrUserEmailRequired
	}

	voted, err := s.votes.HasVoted(ctx, id, userEmail)
	if err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("vote cache lookup failed, falling back to store")
	} else if voted {
		s.logger.Debug().Str("product_id", id).Str("user_email", userEmail).Msg("repeat vote rejected from cache")
		return nil, domain.ErrAlreadyVoted
	}

	product, err := s.repo.AddVote(ctx, id, userEmail)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyVoted) {
			s.markVoted(ctx, id, userEmail)
		}
		return nil, err
	}
	s.markVoted(ctx, id, userEmail)

	s.logger.Info().
		Str("product_id", id).
		Str("user_email", userEmail).
		Int64("votes", product.VoteCount()).
		Msg("vote recorded")
	return product, nil
}

func (s *ProductService) markVoted(ctx context.Context, id, userEmail string) {
	if err := s.votes.MarkVoted(ctx, id, userEmail); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("failed to cache vote")
	}
}

// Replace merges the supplied fields into the stored product. Keys present
// with empty values are written too. The identifier and the vote fields
// cannot be changed this way.
func (s *ProductService) Replace(ctx context.Context, id string, changes map[string]any) (*domain.UpdateResult, error) {
	fields, err := domain.UpdateFields(changes)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrEmptyUpdate
	}
	return s.update(ctx, id, fields, "replace")
}

func (s *ProductService) Accept(ctx context.Context, id string) (*domain.UpdateResult, error) {
	return s.update(ctx, id, map[string]any{"status": string(domain.StatusAccepted)}, "accept")
}

func (s *ProductService) Reject(ctx context.Context, id string) (*domain.UpdateResult, error) {
	return s.update(ctx, id, map[string]any{"status": string(domain.StatusRejected)}, "reject")
}

func (s *ProductService) Feature(ctx context.Context, id string) (*domain.UpdateResult, error) {
	return s.update(ctx, id, map[string]any{"isFeatured": true}, "feature")
}

func (s *ProductService) Report(ctx context.Context, id string) (*domain.UpdateResult, error) {
	return s.update(ctx, id, map[string]any{"reported": true}, "report")
}

func (s *ProductService) update(ctx context.Context, id string, fields map[string]any, action string) (*domain.UpdateResult, error) {
	res, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if res.Matched == 0 {
		return nil, domain.ErrProductNotFound
	}
	s.logger.Info().
		Str("product_id", id).
		Str("action", action).
		Int64("modified", res.Modified).
		Msg("product updated")
	return res, nil
}

// Delete removes a product. Deleting an unknown id is not an error; the
// returned count is zero.
func (s *ProductService) Delete(ctx context.Context, id string) (int64, error) {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if err := s.votes.Forget(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("product_id", id).Msg("failed to drop cached votes")
		}
		s.logger.Info().Str("product_id", id).Msg("product deleted")
	}
	return n, nil
}
