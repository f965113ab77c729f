package ports

import (
	"context"

	"github.com/playground/userstats/internal/core/domain"
)

// RecordRepository is the persistent storage allocator for user records.
// Implementations key records by their derived address.
type RecordRepository interface {
	// Allocate reserves domain.RecordSpace bytes at rec.Address and writes rec.
	// It fails with domain.ErrRecordAlreadyExists when the address is occupied.
	Allocate(ctx context.Context, rec *domain.UserRecord) error
	// Load returns the record at addr or domain.ErrRecordNotFound.
	Load(ctx context.Context, addr domain.Address) (*domain.UserRecord, error)
	// Store overwrites an existing record in place. It fails with
	// domain.ErrRecordNotFound when nothing was allocated at rec.Address.
	Store(ctx context.Context, rec *domain.UserRecord) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
