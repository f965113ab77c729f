package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/playground/userstats/internal/core/domain"
	"github.com/playground/userstats/internal/core/pda"
	"github.com/playground/userstats/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubRecordRepo struct {
	records  map[domain.Address]*domain.UserRecord
	storeErr error // if set, Store returns this error
	stores   int
}

func newStubRecordRepo() *stubRecordRepo {
	return &stubRecordRepo{records: make(map[domain.Address]*domain.UserRecord)}
}

func (r *stubRecordRepo) Allocate(_ context.Context, rec *domain.UserRecord) error {
	if _, exists := r.records[rec.Address]; exists {
		return domain.ErrRecordAlreadyExists
	}
	r.records[rec.Address] = rec.Clone()
	return nil
}

func (r *stubRecordRepo) Load(_ context.Context, addr domain.Address) (*domain.UserRecord, error) {
	rec, ok := r.records[addr]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (r *stubRecordRepo) Store(_ context.Context, rec *domain.UserRecord) error {
	if r.storeErr != nil {
		return r.storeErr
	}
	if _, ok := r.records[rec.Address]; !ok {
		return domain.ErrRecordNotFound
	}
	r.stores++
	r.records[rec.Address] = rec.Clone()
	return nil
}

func (r *stubRecordRepo) Ping(context.Context) error { return nil }

var testProgram = domain.MustParseAddress("7AwuU7HNHrE2GgS4tRdZLdnJmG4Pz5HjgDkd7fDVtoLK")

func newTestService() (*RecordService, *stubRecordRepo) {
	repo := newStubRecordRepo()
	return NewRecordService(repo, pda.NewDeriver(testProgram), zerolog.Nop()), repo
}

func signerFor(owner string) ports.Signer {
	return ports.Signer{Identity: owner, IsSigner: true}
}

// ---------------------------------------------------------------------------
// CreateRecord
// ---------------------------------------------------------------------------

func TestRecordService_Create_Success(t *testing.T) {
	svc, repo := newTestService()

	rec, err := svc.CreateRecord(context.Background(), signerFor("userA"), "userA", "Alice")
	if err != nil {
		t.Fatalf("CreateRecord returned error: %v", err)
	}
	if rec.Level != 0 || rec.Name != "Alice" || rec.Owner != "userA" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	addr, bump, _ := pda.NewDeriver(testProgram).Derive("userA")
	if rec.Address != addr || rec.Bump != bump {
		t.Fatalf("record not at derived address: got %s/%d want %s/%d", rec.Address, rec.Bump, addr, bump)
	}
	if _, ok := repo.records[addr]; !ok {
		t.Fatalf("record not allocated at %s", addr)
	}
}

func TestRecordService_Create_Duplicate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateRecord(ctx, signerFor("userA"), "userA", "Alice"); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.CreateRecord(ctx, signerFor("userA"), "userA", "Bob"); !errors.Is(err, domain.ErrRecordAlreadyExists) {
		t.Fatalf("expected ErrRecordAlreadyExists, got %v", err)
	}

	rec, err := svc.GetRecord(ctx, "userA")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if rec.Name != "Alice" {
		t.Fatalf("duplicate create must not overwrite, got %q", rec.Name)
	}
}

func TestRecordService_Create_NameBound(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateRecord(ctx, signerFor("userA"), "userA", strings.Repeat("a", 201)); !errors.Is(err, domain.ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatalf("failed create must not allocate, have %d records", len(repo.records))
	}

	if _, err := svc.CreateRecord(ctx, signerFor("userA"), "userA", strings.Repeat("a", 200)); err != nil {
		t.Fatalf("expected 200-byte name to succeed, got %v", err)
	}
}

func TestRecordService_Create_Unauthorized(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	cases := map[string]ports.Signer{
		"other identity":  {Identity: "userB", IsSigner: true},
		"not a signer":    {Identity: "userA", IsSigner: false},
		"empty signature": {},
	}
	for name, signer := range cases {
		if _, err := svc.CreateRecord(ctx, signer, "userA", "Alice"); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
	if len(repo.records) != 0 {
		t.Fatalf("unauthorized create must not allocate")
	}
}

func TestRecordService_Create_InvalidIdentity(t *testing.T) {
	svc, _ := newTestService()
	owner := strings.Repeat("z", 40)

	if _, err := svc.CreateRecord(context.Background(), signerFor(owner), owner, "x"); !errors.Is(err, domain.ErrInvalidIdentity) {
		t.Fatalf("expected ErrInvalidIdentity, got %v", err)
	}
}

func TestRecordService_Create_KeyIdentityNotShadowedByName(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	raw := strings.Repeat("a", domain.AddressLen)
	key := domain.Address([]byte(raw)).String()

	if _, err := svc.CreateRecord(ctx, signerFor(raw), raw, "squatter"); !errors.Is(err, domain.ErrInvalidIdentity) {
		t.Fatalf("expected ErrInvalidIdentity, got %v", err)
	}
	if _, err := svc.CreateRecord(ctx, signerFor(key), key, "Alice"); err != nil {
		t.Fatalf("key owner create: %v", err)
	}
	rec, err := svc.GetRecord(ctx, key)
	if err != nil {
		t.Fatalf("key owner get: %v", err)
	}
	if rec.Name != "Alice" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

// ---------------------------------------------------------------------------
// RenameRecord
// ---------------------------------------------------------------------------

func TestRecordService_Rename_NotFound(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.RenameRecord(context.Background(), signerFor("userA"), "userA", "x"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestRecordService_Rename_Unauthorized(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateRecord(ctx, signerFor("userA"), "userA", "Alice"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.RenameRecord(ctx, signerFor("userB"), "userA", "Mallory"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRecordService_Rename_TagStable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateRecord(ctx, signerFor("u"), "u", "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 5; i++ {
		rec, err := svc.RenameRecord(ctx, signerFor("u"), "u", strings.Repeat("n", i*40))
		if err != nil {
			t.Fatalf("rename %d: %v", i, err)
		}
		if rec.Bump != created.Bump || rec.Address != created.Address {
			t.Fatalf("rename %d changed derivation: %+v vs %+v", i, rec, created)
		}
	}
}

func TestRecordService_ReadAfterWrite(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateRecord(ctx, signerFor("u"), "u", "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.RenameRecord(ctx, signerFor("u"), "u", "bob"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	rec, err := svc.GetRecord(ctx, "u")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Name != "bob" || rec.Level != 0 || rec.Bump != created.Bump {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestRecordService_Scenario(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	a := signerFor("userA")

	first, err := svc.CreateRecord(ctx, a, "userA", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Level != 0 || first.Name != "Alice" {
		t.Fatalf("unexpected record: %+v", first)
	}

	if _, err := svc.CreateRecord(ctx, a, "userA", "Bob"); !errors.Is(err, domain.ErrRecordAlreadyExists) {
		t.Fatalf("expected ErrRecordAlreadyExists, got %v", err)
	}

	if _, err := svc.RenameRecord(ctx, a, "userA", strings.Repeat("A", 201)); !errors.Is(err, domain.ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
	if rec, _ := svc.GetRecord(ctx, "userA"); rec.Name != "Alice" {
		t.Fatalf("expected name to remain Alice, got %q", rec.Name)
	}

	if _, err := svc.RenameRecord(ctx, a, "userA", "Alice2"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	rec, _ := svc.GetRecord(ctx, "userA")
	if rec.Name != "Alice2" || rec.Bump != first.Bump {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestRecordService_Rename_TamperedBump(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.CreateRecord(ctx, signerFor("userA"), "userA", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.records[created.Address].Bump = created.Bump - 1

	if _, err := svc.RenameRecord(ctx, signerFor("userA"), "userA", "x"); !errors.Is(err, domain.ErrAddressTagMismatch) {
		t.Fatalf("expected ErrAddressTagMismatch, got %v", err)
	}
	if repo.stores != 0 {
		t.Fatalf("mismatched record must not be written")
	}
}

func TestRecordService_Rename_ForeignOwnerAtAddress(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	created, err := svc.CreateRecord(ctx, signerFor("userA"), "userA", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.records[created.Address].Owner = "userB"

	if _, err := svc.RenameRecord(ctx, signerFor("userA"), "userA", "x"); !errors.Is(err, domain.ErrAddressTagMismatch) {
		t.Fatalf("expected ErrAddressTagMismatch, got %v", err)
	}
}

func TestRecordService_Rename_StoreFailure(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateRecord(ctx, signerFor("userA"), "userA", "Alice"); err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.storeErr = errors.New("disk full")

	if _, err := svc.RenameRecord(ctx, signerFor("userA"), "userA", "Bob"); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected store error, got %v", err)
	}
	repo.storeErr = nil
	if rec, _ := svc.GetRecord(ctx, "userA"); rec.Name != "Alice" {
		t.Fatalf("failed store must leave name unchanged, got %q", rec.Name)
	}
}

func TestRecordService_DeriveAddress(t *testing.T) {
	svc, _ := newTestService()

	view, err := svc.DeriveAddress("userA")
	if err != nil {
		t.Fatalf("DeriveAddress: %v", err)
	}
	addr, bump, _ := pda.NewDeriver(testProgram).Derive("userA")
	if view.Address != addr || view.Bump != bump || view.Owner != "userA" {
		t.Fatalf("unexpected view: %+v", view)
	}
}
