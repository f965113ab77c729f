package domain

import "errors"

var (
	ErrNameTooLong         = errors.New("name too long")
	ErrRecordAlreadyExists = errors.New("record already exists")
	ErrRecordNotFound      = errors.New("record not found")
	ErrUnauthorized        = errors.New("unauthorized signer")
	ErrInvalidIdentity     = errors.New("invalid owner identity")

	// ErrAddressTagMismatch means a stored bump no longer re-derives the
	// address it lives at. Correct derivation never produces it, so seeing it
	// is a defect, not a user error.
	ErrAddressTagMismatch = errors.New("address does not match derivation tag")

	// ErrDuplicateInstruction is returned when an idempotency key was already
	// claimed by an earlier instruction.
	ErrDuplicateInstruction = errors.New("duplicate instruction")

	ErrInvalidAccountData = errors.New("invalid account data")
)
