package domain

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// AddressLen is the byte length of a record address (an ed25519-sized key).
const AddressLen = 32

// Address is a 32-byte storage address. Its text form is base58.
type Address [AddressLen]byte

// ParseAddress decodes a base58 address.
func ParseAddress(s string) (Address, error) {
	var a Address
	b, err := base58.Decode(s)
	if err != nil {
		return a, fmt.Errorf("parse address %q: %w", s, err)
	}
	if len(b) != AddressLen {
		return a, fmt.Errorf("parse address %q: got %d bytes, want %d", s, len(b), AddressLen)
	}
	copy(a[:], b)
	return a, nil
}

// MustParseAddress is ParseAddress for constants; it panics on bad input.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
