package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/playground/userstats/internal/core/domain"
)

const recordCollection = "user_records"

// RecordRepository stores one document per record with the base58 address
// as _id, so the primary index enforces one record per address.
type RecordRepository struct {
	coll *mongo.Collection
}

func NewRecordRepository(db *mongo.Database) *RecordRepository {
	return &RecordRepository{coll: db.Collection(recordCollection)}
}

type mongoRecord struct {
	Address   string `bson:"_id"`
	Owner     string `bson:"owner"`
	Level     int32  `bson:"level"`
	Name      string `bson:"name"`
	Bump      int32  `bson:"bump"`
	Space     int32  `bson:"space"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (r *RecordRepository) Allocate(ctx context.Context, rec *domain.UserRecord) error {
	if err := domain.ValidateName(rec.Name); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC().Unix()
	doc := mongoRecord{
		Address:   rec.Address.String(),
		Owner:     rec.Owner,
		Level:     int32(rec.Level),
		Name:      rec.Name,
		Bump:      int32(rec.Bump),
		Space:     domain.RecordSpace,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrRecordAlreadyExists
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *RecordRepository) Load(ctx context.Context, addr domain.Address) (*domain.UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoRecord
	if err := r.coll.FindOne(ctx, bson.M{"_id": addr.String()}).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find record: %w", err)
	}

	return toDomain(addr, mr)
}

// Store rewrites the mutable field in place. Level and bump are never part
// of the update.
func (r *RecordRepository) Store(ctx context.Context, rec *domain.UserRecord) error {
	if err := domain.ValidateName(rec.Name); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": rec.Address.String()},
		bson.M{"$set": bson.M{
			"name":       rec.Name,
			"updated_at": time.Now().UTC().Unix(),
		}},
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *RecordRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

// EnsureIndexes creates the secondary index on owner.
func (r *RecordRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "owner", Value: 1}}})
	return err
}

func toDomain(addr domain.Address, mr mongoRecord) (*domain.UserRecord, error) {
	if mr.Level < 0 || mr.Level > 0xffff || mr.Bump < 0 || mr.Bump > 0xff {
		return nil, fmt.Errorf("%w: level %d bump %d out of range", domain.ErrInvalidAccountData, mr.Level, mr.Bump)
	}
	return &domain.UserRecord{
		Address: addr,
		Owner:   mr.Owner,
		Level:   uint16(mr.Level),
		Name:    mr.Name,
		Bump:    uint8(mr.Bump),
	}, nil
}
