package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/playground/userstats/internal/core/domain"
)

// RecordRepository stores each encoded record under record:<address>.
// SETNX makes allocation atomic; SET XX only overwrites existing records.
type RecordRepository struct {
	client *redis.Client
}

func NewRecordRepository(client *redis.Client) *RecordRepository {
	return &RecordRepository{client: client}
}

func (r *RecordRepository) Allocate(ctx context.Context, rec *domain.UserRecord) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return err
	}

	ok, err := r.client.SetNX(ctx, recordKey(rec.Address), data, 0).Result()
	if err != nil {
		return fmt.Errorf("allocate record: %w", err)
	}
	if !ok {
		return domain.ErrRecordAlreadyExists
	}
	return nil
}

func (r *RecordRepository) Load(ctx context.Context, addr domain.Address) (*domain.UserRecord, error) {
	data, err := r.client.Get(ctx, recordKey(addr)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("load record: %w", err)
	}

	rec := &domain.UserRecord{Address: addr}
	if err := rec.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *RecordRepository) Store(ctx context.Context, rec *domain.UserRecord) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return err
	}

	ok, err := r.client.SetXX(ctx, recordKey(rec.Address), data, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	if !ok {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *RecordRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func recordKey(addr domain.Address) string {
	return "record:" + addr.String()
}
