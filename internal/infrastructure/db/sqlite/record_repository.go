package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/playground/userstats/internal/core/domain"
)

// RecordRepository persists encoded records in the user_records table.
type RecordRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db, now: time.Now}
}

// Allocate inserts the fixed-size account. The address primary key turns a
// second allocation into domain.ErrRecordAlreadyExists.
func (r *RecordRepository) Allocate(ctx context.Context, rec *domain.UserRecord) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return err
	}

	ts := r.now().UTC().UnixMilli()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_records (address, owner, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		rec.Address.String(), rec.Owner, data, ts, ts,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrRecordAlreadyExists
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *RecordRepository) Load(ctx context.Context, addr domain.Address) (*domain.UserRecord, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM user_records WHERE address = ?`, addr.String()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find record: %w", err)
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

	res, err := r.db.ExecContext(ctx,
		`UPDATE user_records SET data = ?, updated_at = ? WHERE address = ?`,
		data, r.now().UTC().UnixMilli(), rec.Address.String(),
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if n == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *RecordRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
