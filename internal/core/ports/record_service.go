package ports

import (
	"context"

	"github.com/playground/userstats/internal/core/domain"
)

// Signer is the capability supplied by the identity layer for one call. The
// record service trusts it as-is and performs no cryptography.
type Signer struct {
	Identity string
	IsSigner bool
}

// Controls reports whether the signer proves control of owner.
func (s Signer) Controls(owner string) bool {
	return s.IsSigner && s.Identity != "" && s.Identity == owner
}

// AddressView is the derivation result for an identity.
type AddressView struct {
	Owner   string
	Address domain.Address
	Bump    uint8
}

// RecordService defines the record lifecycle use cases.
type RecordService interface {
	CreateRecord(ctx context.Context, signer Signer, owner, name string) (*domain.UserRecord, error)
	RenameRecord(ctx context.Context, signer Signer, owner, newName string) (*domain.UserRecord, error)
	GetRecord(ctx context.Context, owner string) (*domain.UserRecord, error)
	DeriveAddress(owner string) (*AddressView, error)
}
