package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/productvote/catalog-service/internal/core/domain"
	"github.com/productvote/catalog-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

// stubProductRepo mirrors the Mongo repository: every method is atomic with
// respect to the others, like a single-document store operation.
type stubProductRepo struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	nextID   int
	err      error // if set, every method returns this error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[string]*domain.Product)}
}

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	c.VotedUsers = slices.Clone(p.VotedUsers)
	if p.Votes != nil {
		v := *p.Votes
		c.Votes = &v
	}
	return &c
}

func (r *stubProductRepo) Insert(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	stored := cloneProduct(p)
	stored.ID = fmt.Sprintf("%024x", r.nextID)
	r.products[stored.ID] = stored
	return cloneProduct(stored), nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

// Find applies the same filters the real Mongo repo would use.
func (r *stubProductRepo) Find(_ context.Context, f ports.ProductFilter) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []domain.Product{}
	for _, p := range r.products {
		if f.OwnerEmail != "" && p.OwnerEmail != f.OwnerEmail {
			continue
		}
		if f.Status != domain.StatusPending && p.Status != f.Status {
			continue
		}
		if f.Featured != nil && p.Featured() != *f.Featured {
			continue
		}
		if f.Reported != nil && p.IsReported() != *f.Reported {
			continue
		}
		out = append(out, *cloneProduct(p))
	}
	return out, nil
}

func (r *stubProductRepo) AddVote(_ context.Context, id, email string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if p.HasVoted(email) {
		return nil, domain.ErrAlreadyVoted
	}
	n := p.VoteCount() + 1
	p.Votes = &n
	p.VotedUsers = append(p.VotedUsers, email)
	return cloneProduct(p), nil
}

func (r *stubProductRepo) Update(_ context.Context, id string, fields map[string]any) (*domain.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.products[id]
	if !ok {
		return &domain.UpdateResult{}, nil
	}
	modified := false
	for k, v := range fields {
		switch k {
		case "name":
			modified = modified || p.Name != v.(string)
			p.Name = v.(string)
		case "description":
			modified = modified || p.Description != v.(string)
			p.Description = v.(string)
		case "status":
			s := domain.ProductStatus(v.(string))
			modified = modified || p.Status != s
			p.Status = s
		case "isFeatured":
			b := v.(bool)
			modified = modified || !p.Featured()
			p.IsFeatured = &b
		case "reported":
			b := v.(bool)
			modified = modified || !p.IsReported()
			p.Reported = &b
		default:
			if p.Attributes == nil {
				p.Attributes = map[string]any{}
			}
			modified = modified || p.Attributes[k] != v
			p.Attributes[k] = v
		}
	}
	res := &domain.UpdateResult{Matched: 1}
	if modified {
		res.Modified = 1
	}
	return res, nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	if _, ok := r.products[id]; !ok {
		return 0, nil
	}
	delete(r.products, id)
	return 1, nil
}

type stubVoteCache struct {
	mu      sync.Mutex
	voted   map[string]bool
	lookErr error
	forgot  []string
	hits    atomic.Int32
}

func newStubVoteCache() *stubVoteCache {
	return &stubVoteCache{voted: make(map[string]bool)}
}

func (c *stubVoteCache) HasVoted(_ context.Context, productID, email string) (bool, error) {
	if c.lookErr != nil {
		return false, c.lookErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.voted[productID+"|"+email] {
		c.hits.Add(1)
		return true, nil
	}
	return false, nil
}

func (c *stubVoteCache) MarkVoted(_ context.Context, productID, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voted[productID+"|"+email] = true
	return nil
}

func (c *stubVoteCache) Forget(_ context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forgot = append(c.forgot, productID)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func newProductSvc() (*ProductService, *stubProductRepo, *stubVoteCache) {
	repo := newStubProductRepo()
	cache := newStubVoteCache()
	return NewProductService(repo, cache, discardLogger), repo, cache
}

func mustCreate(t *testing.T, svc *ProductService, p domain.Product) *domain.Product {
	t.Helper()
	created, err := svc.Create(context.Background(), &p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return created
}

// ---------------------------------------------------------------------------
// Create / Get
// ---------------------------------------------------------------------------

func TestProductService_Create_ResetsVoteFields(t *testing.T) {
	svc, _, _ := newProductSvc()
	votes := int64(42)

	created := mustCreate(t, svc, domain.Product{
		ID:         "should-be-ignored",
		Name:       "Widget",
		Votes:      &votes,
		VotedUsers: []string{"mallory@x.com"},
		Attributes: map[string]any{"tags": []any{"ai"}},
	})

	if created.ID == "" || created.ID == "should-be-ignored" {
		t.Fatalf("expected generated id, got %q", created.ID)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.VotedUsers == nil || len(got.VotedUsers) != 0 {
		t.Errorf("expected empty votedUsers, got %v", got.VotedUsers)
	}
	if got.Votes != nil {
		t.Errorf("expected votes absent, got %d", *got.Votes)
	}
	if got.Name != "Widget" {
		t.Errorf("name not stored: %q", got.Name)
	}
	if _, ok := got.Attributes["tags"]; !ok {
		t.Errorf("extra attributes dropped: %v", got.Attributes)
	}
}

func TestProductService_Create_RepoError(t *testing.T) {
	svc, repo, _ := newProductSvc()
	repo.err = domain.Unavailable("insert product", errors.New("connection refused"))

	_, err := svc.Create(context.Background(), &domain.Product{Name: "x"})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestProductService_Get_NotFound(t *testing.T) {
	svc, _, _ := newProductSvc()

	_, err := svc.Get(context.Background(), "000000000000000000000099")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected kind ErrNotFound")
	}
}

// ---------------------------------------------------------------------------
// Vote
// ---------------------------------------------------------------------------

func TestProductService_Vote_Success(t *testing.T) {
	svc, _, cache := newProductSvc()
	p := mustCreate(t, svc, domain.Product{Name: "Widget"})

	got, err := svc.Vote(context.Background(), p.ID, "a@x.com")
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if got.VoteCount() != 1 {
		t.Errorf("expected 1 vote, got %d", got.VoteCount())
	}
	if !slices.Equal(got.VotedUsers, []string{"a@x.com"}) {
		t.Errorf("unexpected votedUsers: %v", got.VotedUsers)
	}
	if !cache.voted[p.ID+"|a@x.com"] {
		t.Error("expected vote to be cached")
	}
}

func TestProductService_Vote_TwiceRejected(t *testing.T) {
	svc, repo, _ := newProductSvc()
	p := mustCreate(t, svc, domain.Product{Name: "Widget"})

	if _, err := svc.Vote(context.Background(), p.ID, "a@x.com"); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	_, err := svc.Vote(context.Background(), p.ID, "a@x.com")
	if !errors.Is(err, domain.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	stored := repo.products[p.ID]
	if stored.VoteCount() != 1 || len(stored.VotedUsers) != 1 {
		t.Fatalf("expected exactly one vote, got votes=%d votedUsers=%v", stored.VoteCount(), stored.VotedUsers)
	}
}

func TestProductService_Vote_CacheMissStillRejectedByStore(t *testing.T) {
	svc, repo, cache := newProductSvc()
	p := mustCreate(t, svc, domain.Product{Name: "Widget"})
	if _, err := repo.AddVote(context.Background(), p.ID, "a@x.com"); err != nil {
		t.Fatalf("seed vote: %v", err)
	}

	_, err := svc.Vote(context.Background(), p.ID, "a@x.com")
	if !errors.Is(err, domain.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if !cache.voted[p.ID+"|a@x.com"] {
		t.Error("expected store rejection to warm the cache")
	}
}

func TestProductService_Vote_CacheHitSkipsStore(t *testing.T) {
	svc, repo, cache := newProductSvc()
	p := mustCreate(t, svc, domain.Product{Name: "Widget"})
	cache.voted[p.ID+"|a@x.com"] = true

	_, err := svc.Vote(context.Background(), p.ID, "a@x.com")
	if !errors.Is(err, domain.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if repo.products[p.ID].VoteCount() != 0 {
		t.Error("store must not be touched on a cache hit")
	}
	if cache.hits.Load() != 1 {
		t.Errorf("expected one cache hit, got %d", cache.hits.Load())
	}
}

func TestProductService_Vote_CacheFailureFallsBack(t *testing.T) {
	svc, _, cache := newProductSvc()
	p := mustCreate(t, svc, domain.Product{Name: "Widget"})
	cache.lookErr = errors.New("redis down")

	got, err := svc.Vote(context.Background(), p.ID, "a@x.com")
	if err != nil {
		t.Fatalf("expected vote to succeed despite cache failure, got %v", err)
	}
	if got.VoteCount() != 1 {
		t.Errorf("expected 1 vote, got %d", got.VoteCount())
	}
}

func TestProductService_Vote_MissingEmail(t *testing.T) {
	svc, _, _ := newProductSvc()
	p := mustCreate(t, svc, domain.Product{Name: "Widget"})

	_, err := svc.Vote(context.Background(), p.ID, "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProductService_Vote_ProductNotFound(t *testing.T) {
	svc, _, _ := newProductSvc()

	_, err := svc.Vote(context.Background(), "000000000000000000000099", "a@x.com")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_Vote_ConcurrentDistinctVoters(t *testing.T) {
	svc, repo, _ := newProductSvc()
	p := mustCreate(t, svc, domain.Product{Name: "Widget"})

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Vote(context.Background(), p.ID, fmt.Sprintf("user%d@x.com", i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected vote error: %v", err)
	}

	stored := repo.products[p.ID]
	if stored.VoteCount() != n {
		t.Errorf("expected %d votes, got %d", n, stored.VoteCount())
	}
	if len(stored.VotedUsers) != n {
		t.Errorf("expected %d voters, got %d", n, len(stored.VotedUsers))
	}
	seen := make(map[string]bool, n)
	for _, u := range stored.VotedUsers {
		if seen[u] {
			t.Fatalf("duplicate voter %s", u)
		}
		seen[u] = true
	}
}

func TestProductService_Vote_ConcurrentSameVoter(t *testing.T) {
	svc, repo, _ := newProductSvc()
	p := mustCreate(t, svc, domain.Product{Name: "Widget"})

	const n = 20
	var wg sync.WaitGroup
	var ok, rejected atomic.Int32
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Vote(context.Background(), p.ID, "same@x.com")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrAlreadyVoted):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 1 || rejected.Load() != n-1 {
		t.Fatalf("expected 1 success and %d rejections, got %d/%d", n-1, ok.Load(), rejected.Load())
	}
	if repo.products[p.ID].VoteCount() != 1 {
		t.Fatalf("expected votes=1, got %d", repo.products[p.ID].VoteCount())
	}
}

// ---------------------------------------------------------------------------
// Moderation / listings
// ---------------------------------------------------------------------------

func TestProductService_Listings(t *testing.T) {
	svc, _, _ := newProductSvc()
	ctx := context.Background()

	mustCreate(t, svc, domain.Product{Name: "pending"})
	accepted := mustCreate(t, svc, domain.Product{Name: "accepted"})
	featured := mustCreate(t, svc, domain.Product{Name: "featured"})
	reported := mustCreate(t, svc, domain.Product{Name: "reported"})
	rejectedReported := mustCreate(t, svc, domain.Product{Name: "rejected-reported"})

	for _, id := range []string{accepted.ID, featured.ID, reported.ID} {
		if _, err := svc.Accept(ctx, id); err != nil {
			t.Fatalf("accept: %v", err)
		}
	}
	if _, err := svc.Feature(ctx, featured.ID); err != nil {
		t.Fatalf("feature: %v", err)
	}
	if _, err := svc.Report(ctx, reported.ID); err != nil {
		t.Fatalf("report: %v", err)
	}
	if _, err := svc.Reject(ctx, rejectedReported.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := svc.Report(ctx, rejectedReported.ID); err != nil {
		t.Fatalf("report: %v", err)
	}

	names := func(ps []domain.Product) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.Name)
		}
		slices.Sort(out)
		return out
	}

	acc, _ := svc.ListAccepted(ctx)
	if got := names(acc); !slices.Equal(got, []string{"accepted", "featured", "reported"}) {
		t.Errorf("accepted listing wrong: %v", got)
	}
	feat, _ := svc.ListFeatured(ctx)
	if got := names(feat); !slices.Equal(got, []string{"featured"}) {
		t.Errorf("featured listing wrong: %v", got)
	}
	rep, _ := svc.ListReported(ctx)
	if got := names(rep); !slices.Equal(got, []string{"reported"}) {
		t.Errorf("reported listing wrong: %v", got)
	}
	all, _ := svc.List(ctx, ports.ProductFilter{})
	if len(all) != 5 {
		t.Errorf("expected 5 products, got %d", len(all))
	}
}

func TestProductService_StatusTransitionsUnrestricted(t *testing.T) {
	svc, repo, _ := newProductSvc()
	ctx := context.Background()
	p := mustCreate(t, svc, domain.Product{Name: "Widget"})

	steps := []func(context.Context, string) (*domain.UpdateResult, error){svc.Reject, svc.Accept, svc.Reject}
	want := []domain.ProductStatus{domain.StatusRejected, domain.StatusAccepted, domain.StatusRejected}
	for i, step := range steps {
		if _, err := step(ctx, p.ID); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if repo.products[p.ID].Status != want[i] {
			t.Fatalf("step %d: expected %q, got %q", i, want[i], repo.products[p.ID].Status)
		}
	}
}

func TestProductService_Accept_NotFound(t *testing.T) {
	svc, _, _ := newProductSvc()

	_, err := svc.Accept(context.Background(), "000000000000000000000099")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_ListByOwner(t *testing.T) {
	svc, _, _ := newProductSvc()
	mustCreate(t, svc, domain.Product{Name: "a", OwnerEmail: "owner@x.com"})
	mustCreate(t, svc, domain.Product{Name: "b", OwnerEmail: "other@x.com"})

	got, err := svc.List(context.Background(), ports.ProductFilter{OwnerEmail: "owner@x.com"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

// ---------------------------------------------------------------------------
// Replace / Delete
// ---------------------------------------------------------------------------

func TestProductService_Replace_StripsProtectedFields(t *testing.T) {
	svc, repo, _ := newProductSvc()
	p := mustCreate(t, svc, domain.Product{Name: "Widget"})

	res, err := svc.Replace(context.Background(), p.ID, map[string]any{
		"_id":        "ffffffffffffffffffffffff",
		"name":       "Gadget",
		"votes":      float64(99),
		"votedUsers": []any{"x@x.com"},
		"image":      "a.png",
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if res.Matched != 1 || res.Modified != 1 {
		t.Errorf("unexpected result: %+v", res)
	}

	stored := repo.products[p.ID]
	if stored.Name != "Gadget" || stored.Attributes["image"] != "a.png" {
		t.Errorf("fields not merged: %+v", stored)
	}
	if stored.Votes != nil || len(stored.VotedUsers) != 0 {
		t.Errorf("vote fields must not be replaceable: %+v", stored)
	}
}

func TestProductService_Replace_ClearsFields(t *testing.T) {
	svc, repo, _ := newProductSvc()
	p := mustCreate(t, svc, domain.Product{Name: "Widget", Description: "old", Status: domain.StatusAccepted})

	res, err := svc.Replace(context.Background(), p.ID, map[string]any{"name": "Gadget", "description": ""})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if res.Modified != 1 {
		t.Errorf("expected a modification, got %+v", res)
	}
	stored := repo.products[p.ID]
	if stored.Name != "Gadget" || stored.Description != "" {
		t.Fatalf("empty description must be written: %+v", stored)
	}

	if _, err := svc.Replace(context.Background(), p.ID, map[string]any{"status": ""}); err != nil {
		t.Fatalf("clearing status: %v", err)
	}
	if repo.products[p.ID].Status != domain.StatusPending {
		t.Fatalf("expected product back to pending, got %q", repo.products[p.ID].Status)
	}
}

func TestProductService_Replace_WrongType(t *testing.T) {
	svc, _, _ := newProductSvc()
	p := mustCreate(t, svc, domain.Product{Name: "Widget"})

	_, err := svc.Replace(context.Background(), p.ID, map[string]any{"isFeatured": "yes"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProductService_Replace_NoChange(t *testing.T) {
	svc, _, _ := newProductSvc()
	p := mustCreate(t, svc, domain.Product{Name: "Widget"})

	res, err := svc.Replace(context.Background(), p.ID, map[string]any{"name": "Widget"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if res.Matched != 1 || res.Modified != 0 {
		t.Fatalf("expected matched=1 modified=0, got %+v", res)
	}
}

func TestProductService_Replace_Empty(t *testing.T) {
	svc, _, _ := newProductSvc()
	p := mustCreate(t, svc, domain.Product{Name: "Widget"})

	for _, body := range []map[string]any{nil, {"votes": float64(3), "_id": "x"}} {
		_, err := svc.Replace(context.Background(), p.ID, body)
		if !errors.Is(err, domain.ErrEmptyUpdate) {
			t.Fatalf("expected ErrEmptyUpdate for %v, got %v", body, err)
		}
	}
}

func TestProductService_Delete(t *testing.T) {
	svc, _, cache := newProductSvc()
	p := mustCreate(t, svc, domain.Product{Name: "Widget"})

	n, err := svc.Delete(context.Background(), p.ID)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 deleted, got %d (%v)", n, err)
	}
	if !slices.Equal(cache.forgot, []string{p.ID}) {
		t.Errorf("expected cached votes dropped, got %v", cache.forgot)
	}

	n, err = svc.Delete(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("deleting a missing product must not fail: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 deleted, got %d", n)
	}
}
