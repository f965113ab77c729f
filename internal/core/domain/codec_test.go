package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestCodec_FixedSize(t *testing.T) {
	for _, rec := range []*UserRecord{
		{Owner: "u", Name: ""},
		{Owner: strings.Repeat("o", MaxOwnerLen), Name: strings.Repeat("n", MaxNameLen), Level: 65535, Bump: 255},
	} {
		data, err := rec.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary: %v", err)
		}
		if len(data) != RecordSpace {
			t.Fatalf("expected %d bytes, got %d", RecordSpace, len(data))
		}

		var got UserRecord
		if err := got.UnmarshalBinary(data); err != nil {
			t.Fatalf("UnmarshalBinary: %v", err)
		}
		if got.Owner != rec.Owner || got.Name != rec.Name || got.Level != rec.Level || got.Bump != rec.Bump {
			t.Fatalf("decoded %+v, want %+v", got, rec)
		}
	}
}

func TestCodec_MarshalRejectsOversizeName(t *testing.T) {
	rec := &UserRecord{Owner: "u", Name: strings.Repeat("n", MaxNameLen+1)}
	if _, err := rec.MarshalBinary(); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
}

func TestCodec_UnmarshalRejectsForeignData(t *testing.T) {
	var rec UserRecord

	if err := rec.UnmarshalBinary(make([]byte, 10)); !errors.Is(err, ErrInvalidAccountData) {
		t.Fatalf("expected ErrInvalidAccountData for short data, got %v", err)
	}
	if err := rec.UnmarshalBinary(make([]byte, RecordSpace)); !errors.Is(err, ErrInvalidAccountData) {
		t.Fatalf("expected ErrInvalidAccountData for zero discriminator, got %v", err)
	}

	good, err := (&UserRecord{Owner: "u", Name: "x"}).MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	// Corrupt the owner length prefix past its bound.
	good[discriminatorLen] = 0xff
	if err := rec.UnmarshalBinary(good); !errors.Is(err, ErrInvalidAccountData) {
		t.Fatalf("expected ErrInvalidAccountData for bad length, got %v", err)
	}
}
