package ports

import (
	"context"
	"time"

	"github.com/playground/userstats/internal/core/domain"
)

// InstructionKind names an instruction the program accepts.
type InstructionKind string

const (
	InstructionInitialize   InstructionKind = "initialize"
	InstructionCreateRecord InstructionKind = "create_record"
	InstructionRenameRecord InstructionKind = "rename_record"
)

// Instruction is the DTO passed from the transport layer to the executor.
type Instruction struct {
	Kind   InstructionKind
	Signer Signer
	Owner  string
	Name   string
	// IdempotencyKey is optional. Reusing it for the same kind is rejected
	// once an instruction with it has succeeded or is still running.
	IdempotencyKey string
}

// Receipt is returned once an instruction has executed.
type Receipt struct {
	ID     string
	Kind   InstructionKind
	Record *domain.UserRecord // nil for initialize
}

// InstructionExecutor runs instructions, serialising those that touch the
// same record.
type InstructionExecutor interface {
	Execute(ctx context.Context, in Instruction) (*Receipt, error)
}

// ReplayGuard remembers idempotency keys.
type ReplayGuard interface {
	// Claim records key for signer and reports whether it was new.
	Claim(ctx context.Context, signer, key string, ttl time.Duration) (bool, error)
	// Release forgets a claimed key so it can be used again.
	Release(ctx context.Context, signer, key string) error
}
