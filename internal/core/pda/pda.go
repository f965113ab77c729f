// Package pda derives program addresses: deterministic 32-byte addresses that
// are computed from a list of seeds and a program id and that have no private
// key, because they are guaranteed not to lie on the ed25519 curve.
//
// The scheme is the one Solana programs use for per-user accounts:
//
//	address = sha256(seed_1 || ... || seed_n || program_id || "ProgramDerivedAddress")
//
// FindProgramAddress appends a one-byte "bump" seed, starting at 255 and
// counting down, until the hash falls off the curve. Storing the bump lets a
// later call re-derive the address with a single hash.
package pda

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/playground/userstats/internal/core/domain"
)

const (
	MaxSeeds   = 16
	MaxSeedLen = 32

	marker = "ProgramDerivedAddress"
)

var (
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrInvalidSeeds          = errors.New("provided seeds do not result in a valid address")
	ErrNoViableBump          = errors.New("unable to find a viable program address bump seed")
)

// CreateProgramAddress hashes seeds with programID. It fails with
// ErrInvalidSeeds when the result is a valid curve point.
func CreateProgramAddress(seeds [][]byte, programID domain.Address) (domain.Address, error) {
	var addr domain.Address
	if len(seeds) > MaxSeeds {
		return addr, fmt.Errorf("%w: %d seeds (max %d)", ErrMaxSeedLengthExceeded, len(seeds), MaxSeeds)
	}

	h := sha256.New()
	for i, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return addr, fmt.Errorf("%w: seed %d is %d bytes (max %d)", ErrMaxSeedLengthExceeded, i, len(seed), MaxSeedLen)
		}
		_, _ = h.Write(seed)
	}
	_, _ = h.Write(programID[:])
	_, _ = h.Write([]byte(marker))
	copy(addr[:], h.Sum(nil))

	if IsOnCurve(addr[:]) {
		return domain.Address{}, ErrInvalidSeeds
	}
	return addr, nil
}

// FindProgramAddress searches bumps from 255 down to 1 and returns the first
// off-curve address together with its bump.
func FindProgramAddress(seeds [][]byte, programID domain.Address) (domain.Address, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrInvalidSeeds) {
			return domain.Address{}, 0, err
		}
	}
	return domain.Address{}, 0, ErrNoViableBump
}

// IsOnCurve reports whether b decodes as an ed25519 point.
func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
