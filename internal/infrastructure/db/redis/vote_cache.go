package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/productvote/catalog-service/internal/core/ports"
)

const defaultVoteTTL = time.Hour

// VoteCache remembers which emails already voted on a product so repeat
// votes can be refused without a store round trip. MongoDB stays the
// authority; a miss here proves nothing.
//
// Key format: votes:<product_id> (a set of emails)
//
// A VoteCache with a nil client is a no-op: every lookup misses.
type VoteCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.VoteCache = (*VoteCache)(nil)

// NewVoteCache wraps client. ttl bounds how long a product's voter set is
// kept after its last vote.
func NewVoteCache(client *redis.Client, ttl time.Duration) *VoteCache {
	if ttl <= 0 {
		ttl = defaultVoteTTL
	}
	return &VoteCache{client: client, ttl: ttl}
}

// HasVoted reports whether email is cached as a voter of productID.
func (c *VoteCache) HasVoted(ctx context.Context, productID, email string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	ok, err := c.client.SIsMember(ctx, c.key(productID), email).Result()
	if err != nil {
		return false, fmt.Errorf("vote cache lookup: %w", err)
	}
	return ok, nil
}

// MarkVoted adds email to the product's voter set and refreshes its expiry.
func (c *VoteCache) MarkVoted(ctx context.Context, productID, email string) error {
	if c.client == nil {
		return nil
	}
	key := c.key(productID)
	pipe := c.client.TxPipeline()
	pipe.SAdd(ctx, key, email)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("vote cache mark: %w", err)
	}
	return nil
}

// Forget drops the voter set of a deleted product.
func (c *VoteCache) Forget(ctx context.Context, productID string) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, c.key(productID)).Err(); err != nil {
		return fmt.Errorf("vote cache forget: %w", err)
	}
	return nil
}

// key folds the hex id to lower case; the store accepts either case for the
// same product.
func (c *VoteCache) key(productID string) string {
	return "votes:" + strings.ToLower(productID)
}
