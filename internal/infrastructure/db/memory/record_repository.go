// Package memory holds in-process implementations of the storage ports. They
// back the "memory" storage backend and the tests of the layers above.
package memory

import (
	"context"
	"sync"

	"github.com/playground/userstats/internal/core/domain"
)

// RecordRepository keeps encoded records in a map keyed by address.
type RecordRepository struct {
	mu       sync.RWMutex
	accounts map[domain.Address][]byte
}

func NewRecordRepository() *RecordRepository {
	return &RecordRepository{accounts: make(map[domain.Address][]byte)}
}

// Allocate encodes rec into a fixed-size account at rec.Address.
func (r *RecordRepository) Allocate(_ context.Context, rec *domain.UserRecord) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[rec.Address]; exists {
		return domain.ErrRecordAlreadyExists
	}
	r.accounts[rec.Address] = data
	return nil
}

func (r *RecordRepository) Load(_ context.Context, addr domain.Address) (*domain.UserRecord, error) {
	r.mu.RLock()
	data, ok := r.accounts[addr]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	rec := &domain.UserRecord{Address: addr}
	if err := rec.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return rec, nil
}

// Store swaps in a freshly encoded account of the same reserved size. Slices
// handed to Load are never written again.
func (r *RecordRepository) Store(_ context.Context, rec *domain.UserRecord) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[rec.Address]; !ok {
		return domain.ErrRecordNotFound
	}
	r.accounts[rec.Address] = data
	return nil
}

func (r *RecordRepository) Ping(context.Context) error { return nil }
