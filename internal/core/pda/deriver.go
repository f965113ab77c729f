package pda

import (
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/playground/userstats/internal/core/domain"
)

// Deriver derives record addresses for one program from the fixed record
// seed and the owner identity.
type Deriver struct {
	programID domain.Address
	salt      []byte
}

// NewDeriver returns a Deriver bound to programID using domain.RecordSeed.
func NewDeriver(programID domain.Address) *Deriver {
	return &Deriver{programID: programID, salt: []byte(domain.RecordSeed)}
}

// ProgramID returns the program the deriver is bound to.
func (d *Deriver) ProgramID() domain.Address {
	return d.programID
}

// Derive finds the canonical address and bump for owner.
func (d *Deriver) Derive(owner string) (domain.Address, uint8, error) {
	seed, err := IdentitySeed(owner)
	if err != nil {
		return domain.Address{}, 0, err
	}
	addr, bump, err := FindProgramAddress([][]byte{d.salt, seed}, d.programID)
	if err != nil {
		return domain.Address{}, 0, fmt.Errorf("derive %s: %w", owner, err)
	}
	return addr, bump, nil
}

// Verify re-derives the address for owner using a known bump. It is a single
// hash, unlike Derive which may search.
func (d *Deriver) Verify(owner string, bump uint8) (domain.Address, error) {
	seed, err := IdentitySeed(owner)
	if err != nil {
		return domain.Address{}, err
	}
	addr, err := CreateProgramAddress([][]byte{d.salt, seed, {bump}}, d.programID)
	if err != nil {
		return domain.Address{}, fmt.Errorf("verify %s with bump %d: %w", owner, bump, err)
	}
	return addr, nil
}

// MaxNameIdentityLen bounds identities that are not base58 keys. It is one
// byte short of a key seed so the two forms can never yield the same seed.
const MaxNameIdentityLen = domain.AddressLen - 1

// IdentitySeed turns an owner identity into a derivation seed. A base58
// 32-byte public key contributes its raw bytes; any other identity
// contributes its UTF-8 bytes and must be at most MaxNameIdentityLen long.
func IdentitySeed(owner string) ([]byte, error) {
	if err := domain.ValidateOwner(owner); err != nil {
		return nil, err
	}
	if key, err := base58.Decode(owner); err == nil && len(key) == domain.AddressLen {
		return key, nil
	}
	if len(owner) > MaxNameIdentityLen {
		return nil, fmt.Errorf("%w: %q is neither a 32-byte base58 key nor at most %d bytes", domain.ErrInvalidIdentity, owner, MaxNameIdentityLen)
	}
	return []byte(owner), nil
}
