package memory

import (
	"context"
	"sync"
	"time"
)

// sweepInterval bounds how often Claim scans for expired keys.
const sweepInterval = time.Minute

// ReplayGuard remembers idempotency keys until they expire.
type ReplayGuard struct {
	mu        sync.Mutex
	keys      map[string]time.Time
	nextSweep time.Time
	now       func() time.Time
}

func NewReplayGuard() *ReplayGuard {
	return &ReplayGuard{keys: make(map[string]time.Time), now: time.Now}
}

func (g *ReplayGuard) Claim(_ context.Context, signer, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.sweep(now)

	k := guardKey(signer, key)
	if exp, ok := g.keys[k]; ok && now.Before(exp) {
		return false, nil
	}
	g.keys[k] = now.Add(ttl)
	return true, nil
}

func (g *ReplayGuard) Release(_ context.Context, signer, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.keys, guardKey(signer, key))
	return nil
}

// sweep drops expired keys. Caller holds mu.
func (g *ReplayGuard) sweep(now time.Time) {
	if now.Before(g.nextSweep) {
		return
	}
	for k, exp := range g.keys {
		if !now.Before(exp) {
			delete(g.keys, k)
		}
	}
	g.nextSweep = now.Add(sweepInterval)
}

func guardKey(signer, key string) string {
	return signer + ":" + key
}
