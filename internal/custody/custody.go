package custody

import (
	"context"
	"errors"
)

// Custody collaborators own the physical movement of value. The protocol
// only consumes their contracts: balances, atomic transfers, and the fee
// claim whose effect is observed through before/after vault deltas.

// ErrTransferFailed is returned when a transfer cannot complete. The
// enclosing ledger transaction aborts with it.
var ErrTransferFailed = errors.New("custody: transfer failed")

// ErrUnknownVault is returned for a balance or transfer against a vault
// address custody does not hold.
var ErrUnknownVault = errors.New("custody: unknown vault")

// Vaults provides custody balance reads and atomic transfers.
type Vaults interface {
	// Balance returns the current balance held in vault.
	Balance(ctx context.Context, vault string) (uint64, error)

	// Transfer moves amount from vault to destination. Either the full
	// amount moves or nothing does.
	Transfer(ctx context.Context, vault, destination string, amount uint64) error
}

// FeeClaimer claims accrued fees from a liquidity position into the
// program vaults. Callers measure what was claimed by reading vault
// balances before and after; the claim's internal mechanics are opaque.
type FeeClaimer interface {
	ClaimPositionFees(ctx context.Context, position string) error
}

// PositionCreator creates the external liquidity position. The protocol
// consumes only acceptance or the specific validation error.
type PositionCreator interface {
	CreatePosition(ctx context.Context, position string, lowerTick, upperTick int32, feeTierBps uint16) error
}
