package domain

import "fmt"

// MaxNameLen is the upper bound, in bytes, of a record name.
const MaxNameLen = 200

// MaxOwnerLen bounds the owner identity text. 44 is the longest base58
// encoding of a 32-byte key.
const MaxOwnerLen = 44

// RecordSpace is the number of bytes reserved for every record at allocation:
// discriminator, owner (length prefix + bound), level, name (length prefix +
// bound) and bump. Records are never resized.
const RecordSpace = discriminatorLen + 4 + MaxOwnerLen + 2 + 4 + MaxNameLen + 1

// RecordSeed is the fixed salt mixed with the owner identity to derive a
// record address.
const RecordSeed = "user-stats"

// UserRecord is the per-identity profile record. There is at most one per
// owner, stored at the address derived from RecordSeed and the owner.
type UserRecord struct {
	Address Address `json:"address"`
	Owner   string  `json:"owner"`
	Level   uint16  `json:"level"`
	Name    string  `json:"name"`
	Bump    uint8   `json:"bump"`
}

// NewUserRecord builds a fresh record at level 0. The name is validated.
func NewUserRecord(addr Address, owner, name string, bump uint8) (*UserRecord, error) {
	if err := ValidateOwner(owner); err != nil {
		return nil, err
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &UserRecord{
		Address: addr,
		Owner:   owner,
		Name:    name,
		Bump:    bump,
	}, nil
}

// Rename replaces the name in place. Level and bump are untouched.
func (r *UserRecord) Rename(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	r.Name = name
	return nil
}

// ValidateOwner rejects identities that cannot be stored or derived from.
func ValidateOwner(owner string) error {
	if owner == "" {
		return fmt.Errorf("%w: empty", ErrInvalidIdentity)
	}
	if len(owner) > MaxOwnerLen {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInvalidIdentity, len(owner), MaxOwnerLen)
	}
	return nil
}

// ValidateName enforces the byte-length bound on record names.
func ValidateName(name string) error {
	if len(name) > MaxNameLen {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrNameTooLong, len(name), MaxNameLen)
	}
	return nil
}

// Clone returns a copy safe to hand across package boundaries.
func (r *UserRecord) Clone() *UserRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
