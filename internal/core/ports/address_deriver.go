package ports

import "github.com/playground/userstats/internal/core/domain"

// AddressDeriver maps an owner identity to its record address.
type AddressDeriver interface {
	// Derive returns the canonical address and bump for owner.
	Derive(owner string) (domain.Address, uint8, error)
	// Verify recomputes the address for owner from a stored bump.
	Verify(owner string, bump uint8) (domain.Address, error)
}
