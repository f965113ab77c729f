package mongo

import (
	"errors"
	"testing"

	"github.com/playground/userstats/internal/core/domain"
)

func TestToDomain(t *testing.T) {
	addr := domain.Address{9}
	rec, err := toDomain(addr, mongoRecord{Address: addr.String(), Owner: "userA", Level: 0, Name: "Alice", Bump: 254})
	if err != nil {
		t.Fatalf("toDomain: %v", err)
	}
	if rec.Address != addr || rec.Owner != "userA" || rec.Name != "Alice" || rec.Bump != 254 || rec.Level != 0 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestToDomain_RejectsOutOfRange(t *testing.T) {
	if _, err := toDomain(domain.Address{}, mongoRecord{Bump: 300}); !errors.Is(err, domain.ErrInvalidAccountData) {
		t.Fatalf("expected ErrInvalidAccountData, got %v", err)
	}
	if _, err := toDomain(domain.Address{}, mongoRecord{Level: -1}); !errors.Is(err, domain.ErrInvalidAccountData) {
		t.Fatalf("expected ErrInvalidAccountData, got %v", err)
	}
}
