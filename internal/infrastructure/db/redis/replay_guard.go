package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayGuard claims instruction idempotency keys in Redis.
// Key format: replay:<signer>:<idempotency_key>
type ReplayGuard struct {
	client *redis.Client
}

// NewReplayGuard creates a ReplayGuard wrapping the given Redis client.
func NewReplayGuard(client *redis.Client) *ReplayGuard {
	return &ReplayGuard{client: client}
}

// Claim atomically records key for signer. It reports false when the key was
// already claimed and has not expired.
func (g *ReplayGuard) Claim(ctx context.Context, signer, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(signer, key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("replay claim: %w", err)
	}
	return ok, nil
}

// Release deletes a claimed key.
func (g *ReplayGuard) Release(ctx context.Context, signer, key string) error {
	if err := g.client.Del(ctx, g.key(signer, key)).Err(); err != nil {
		return fmt.Errorf("replay release: %w", err)
	}
	return nil
}

func (g *ReplayGuard) key(signer, key string) string {
	return fmt.Sprintf("replay:%s:%s", signer, key)
}
