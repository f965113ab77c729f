package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

const discriminatorLen = 8

// accountDiscriminator tags encoded records so foreign data is rejected on load.
var accountDiscriminator = func() [discriminatorLen]byte {
	var d [discriminatorLen]byte
	sum := sha256.Sum256([]byte("account:UserStats"))
	copy(d[:], sum[:discriminatorLen])
	return d
}()

// MarshalBinary encodes the record into exactly RecordSpace bytes:
//
//	discriminator [8] | owner len u32 | owner | level u16 | name len u32 | name | bump u8 | zero padding
//
// Integers are little endian. The address is the storage key and is not encoded.
func (r *UserRecord) MarshalBinary() ([]byte, error) {
	if err := ValidateOwner(r.Owner); err != nil {
		return nil, err
	}
	if err := ValidateName(r.Name); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, RecordSpace)
	buf = append(buf, accountDiscriminator[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(r.Owner)))
	buf = append(buf, r.Owner...)
	buf = binary.LittleEndian.AppendUint16(buf, r.Level)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(r.Name)))
	buf = append(buf, r.Name...)
	buf = append(buf, r.Bump)

	// Pad to the reserved size.
	return buf[:RecordSpace], nil
}

// UnmarshalBinary decodes data produced by MarshalBinary. Address is left
// untouched; callers set it from the storage key.
func (r *UserRecord) UnmarshalBinary(data []byte) error {
	if len(data) != RecordSpace {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidAccountData, len(data), RecordSpace)
	}
	if [discriminatorLen]byte(data[:discriminatorLen]) != accountDiscriminator {
		return fmt.Errorf("%w: discriminator mismatch", ErrInvalidAccountData)
	}
	d := decoder{buf: data[discriminatorLen:]}

	owner, err := d.readString(MaxOwnerLen)
	if err != nil {
		return fmt.Errorf("%w: owner: %v", ErrInvalidAccountData, err)
	}
	level, err := d.readUint16()
	if err != nil {
		return fmt.Errorf("%w: level: %v", ErrInvalidAccountData, err)
	}
	name, err := d.readString(MaxNameLen)
	if err != nil {
		return fmt.Errorf("%w: name: %v", ErrInvalidAccountData, err)
	}
	bump, err := d.readByte()
	if err != nil {
		return fmt.Errorf("%w: bump: %v", ErrInvalidAccountData, err)
	}

	r.Owner = owner
	r.Level = level
	r.Name = name
	r.Bump = bump
	return nil
}

type decoder struct {
	buf []byte
}

func (d *decoder) take(n int) ([]byte, error) {
	if len(d.buf) < n {
		return nil, fmt.Errorf("short buffer: need %d, have %d", n, len(d.buf))
	}
	b := d.buf[:n]
	d.buf = d.buf[n:]
	return b, nil
}

func (d *decoder) readUint16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *decoder) readByte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) readString(limit int) (string, error) {
	lb, err := d.take(4)
	if err != nil {
		return "", err
	}
	n := binary.LittleEndian.Uint32(lb)
	if n > uint32(limit) {
		return "", fmt.Errorf("length %d exceeds %d", n, limit)
	}
	b, err := d.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
