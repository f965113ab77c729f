// Package dbtest holds the behaviour every ports.RecordRepository must share.
package dbtest

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playground/userstats/internal/core/domain"
	"github.com/playground/userstats/internal/core/ports"
)

// RunRecordRepositoryContract runs the shared suite against repositories
// returned by newRepo. Each subtest gets a fresh repository.
func RunRecordRepositoryContract(t *testing.T, newRepo func(t *testing.T) ports.RecordRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("allocate then load", func(t *testing.T) {
		repo := newRepo(t)
		rec := sampleRecord(1, "userA", "Alice")

		require.NoError(t, repo.Allocate(ctx, rec))

		got, err := repo.Load(ctx, rec.Address)
		require.NoError(t, err)
		assert.Equal(t, rec, got)
	})

	t.Run("allocate twice", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Allocate(ctx, sampleRecord(2, "userA", "Alice")))

		err := repo.Allocate(ctx, sampleRecord(2, "userA", "Bob"))
		require.ErrorIs(t, err, domain.ErrRecordAlreadyExists)

		got, err := repo.Load(ctx, sampleRecord(2, "", "").Address)
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.Name)
	})

	t.Run("load missing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Load(ctx, sampleRecord(3, "", "").Address)
		require.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("store overwrites in place", func(t *testing.T) {
		repo := newRepo(t)
		rec := sampleRecord(4, "userA", strings.Repeat("a", domain.MaxNameLen))
		require.NoError(t, repo.Allocate(ctx, rec))

		rec.Name = "bob"
		require.NoError(t, repo.Store(ctx, rec))

		got, err := repo.Load(ctx, rec.Address)
		require.NoError(t, err)
		assert.Equal(t, "bob", got.Name)
		assert.Equal(t, rec.Bump, got.Bump)
		assert.Equal(t, uint16(0), got.Level)
	})

	t.Run("store missing", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Store(ctx, sampleRecord(5, "userA", "x"))
		require.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("concurrent allocate has one winner", func(t *testing.T) {
		repo := newRepo(t)
		const n = 8

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.Allocate(ctx, sampleRecord(6, "userA", "racer"))
				if err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, domain.ErrRecordAlreadyExists)
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})

	t.Run("concurrent load and store never tear", func(t *testing.T) {
		repo := newRepo(t)
		rec := sampleRecord(7, "userA", strings.Repeat("a", domain.MaxNameLen))
		require.NoError(t, repo.Allocate(ctx, rec))

		names := []string{strings.Repeat("a", domain.MaxNameLen), strings.Repeat("b", domain.MaxNameLen/2)}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				next := rec.Clone()
				next.Name = names[i%2]
				if err := repo.Store(ctx, next); err != nil {
					t.Errorf("store: %v", err)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				got, err := repo.Load(ctx, rec.Address)
				if err != nil {
					t.Errorf("load: %v", err)
					return
				}
				if got.Name != names[0] && got.Name != names[1] {
					t.Errorf("torn record: %q", got.Name)
					return
				}
			}
		}()
		wg.Wait()
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, newRepo(t).Ping(ctx))
	})
}

func sampleRecord(seed byte, owner, name string) *domain.UserRecord {
	var addr domain.Address
	for i := range addr {
		addr[i] = seed + byte(i)
	}
	return &domain.UserRecord{Address: addr, Owner: owner, Name: name, Bump: 250 + seed%5}
}
