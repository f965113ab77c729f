package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/playground/userstats/internal/core/domain"
	"github.com/playground/userstats/internal/core/ports"
)

// RecordService implements the user record lifecycle: one record per owner,
// created once and renamed in place.
type RecordService struct {
	repo    ports.RecordRepository
	deriver ports.AddressDeriver
	logger  zerolog.Logger
}

func NewRecordService(repo ports.RecordRepository, deriver ports.AddressDeriver, logger zerolog.Logger) *RecordService {
	return &RecordService{repo: repo, deriver: deriver, logger: logger}
}

// CreateRecord allocates the owner's record at its derived address with
// level 0. All checks run before the allocation so a failure leaves no trace.
func (s *RecordService) CreateRecord(ctx context.Context, signer ports.Signer, owner, name string) (*domain.UserRecord, error) {
	if !signer.Controls(owner) {
		return nil, fmt.Errorf("create record: %w", domain.ErrUnauthorized)
	}
	if err := domain.ValidateName(name); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	addr, bump, err := s.deriver.Derive(owner)
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	rec, err := domain.NewUserRecord(addr, owner, name, bump)
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	if err := s.repo.Allocate(ctx, rec); err != nil {
		if !errors.Is(err, domain.ErrRecordAlreadyExists) {
			s.logger.Error().Err(err).Str("owner", owner).Str("address", addr.String()).Msg("failed to allocate record")
		}
		return nil, fmt.Errorf("create record: %w", err)
	}

	s.logger.Info().
		Str("owner", owner).
		Str("address", addr.String()).
		Uint8("bump", bump).
		Msg("record created")

	return rec.Clone(), nil
}

// RenameRecord overwrites the owner's record name. The stored bump is
// re-verified against the derivation before anything is written.
func (s *RecordService) RenameRecord(ctx context.Context, signer ports.Signer, owner, newName string) (*domain.UserRecord, error) {
	if !signer.Controls(owner) {
		return nil, fmt.Errorf("rename record: %w", domain.ErrUnauthorized)
	}

	rec, err := s.load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("rename record: %w", err)
	}

	if err := rec.Rename(newName); err != nil {
		return nil, fmt.Errorf("rename record: %w", err)
	}

	if err := s.repo.Store(ctx, rec); err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Str("address", rec.Address.String()).Msg("failed to store record")
		return nil, fmt.Errorf("rename record: %w", err)
	}

	s.logger.Info().
		Str("owner", owner).
		Str("address", rec.Address.String()).
		Msg("record renamed")

	return rec.Clone(), nil
}

// GetRecord loads the owner's record. Reads need no signer.
func (s *RecordService) GetRecord(ctx context.Context, owner string) (*domain.UserRecord, error) {
	rec, err := s.load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// DeriveAddress exposes the derivation without touching storage.
func (s *RecordService) DeriveAddress(owner string) (*ports.AddressView, error) {
	addr, bump, err := s.deriver.Derive(owner)
	if err != nil {
		return nil, fmt.Errorf("derive address: %w", err)
	}
	return &ports.AddressView{Owner: owner, Address: addr, Bump: bump}, nil
}

// load derives the owner's address, reads the record there and checks that
// the stored bump and owner still reproduce that address.
func (s *RecordService) load(ctx context.Context, owner string) (*domain.UserRecord, error) {
	addr, _, err := s.deriver.Derive(owner)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.Load(ctx, addr)
	if err != nil {
		return nil, err
	}

	verified, err := s.deriver.Verify(owner, rec.Bump)
	if err != nil || verified != addr || rec.Owner != owner || rec.Address != addr {
		s.logger.Error().
			Err(err).
			Str("owner", owner).
			Str("stored_owner", rec.Owner).
			Str("address", addr.String()).
			Uint8("bump", rec.Bump).
			Msg("stored record does not match its derivation")
		return nil, domain.ErrAddressTagMismatch
	}

	return rec, nil
}
