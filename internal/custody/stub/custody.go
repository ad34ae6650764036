package stub

import (
	"context"
	"sync"

	"github.com/0xtarunkm/star-fee-distribution/internal/custody"
)

// Vaults implements custody.Vaults in memory for tests and local runs.
type Vaults struct {
	mu       sync.Mutex
	balances map[string]uint64
}

// NewVaults creates an empty in-memory vault set.
func NewVaults() *Vaults {
	return &Vaults{balances: make(map[string]uint64)}
}

// Compile-time interface check.
var _ custody.Vaults = (*Vaults)(nil)

// Credit adds amount to vault, creating it if needed.
func (v *Vaults) Credit(vault string, amount uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.balances[vault] += amount
}

// Balance returns the vault balance. Unknown vaults read as zero so that
// freshly derived addresses behave like empty accounts.
func (v *Vaults) Balance(_ context.Context, vault string) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balances[vault], nil
}

// Transfer moves amount from vault to destination, all or nothing.
func (v *Vaults) Transfer(_ context.Context, vault, destination string, amount uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.balances[vault] < amount {
		return custody.ErrTransferFailed
	}
	v.balances[vault] -= amount
	v.balances[destination] += amount
	return nil
}

// FeeClaimer implements custody.FeeClaimer by crediting pending amounts
// into the configured vaults on claim. Tests set PendingBase/PendingQuote
// to simulate accrued position fees.
type FeeClaimer struct {
	Vaults     *Vaults
	BaseVault  string
	QuoteVault string

	PendingBase  uint64
	PendingQuote uint64

	// Err, when set, fails the next claim.
	Err error
}

// NewFeeClaimer creates a claimer that settles into the given vaults.
func NewFeeClaimer(vaults *Vaults, baseVault, quoteVault string) *FeeClaimer {
	return &FeeClaimer{Vaults: vaults, BaseVault: baseVault, QuoteVault: quoteVault}
}

var _ custody.FeeClaimer = (*FeeClaimer)(nil)

// ClaimPositionFees credits the pending amounts and clears them.
func (c *FeeClaimer) ClaimPositionFees(_ context.Context, _ string) error {
	if c.Err != nil {
		return c.Err
	}
	if c.PendingBase > 0 {
		c.Vaults.Credit(c.BaseVault, c.PendingBase)
		c.PendingBase = 0
	}
	if c.PendingQuote > 0 {
		c.Vaults.Credit(c.QuoteVault, c.PendingQuote)
		c.PendingQuote = 0
	}
	return nil
}

// PositionCreator implements custody.PositionCreator and records every
// accepted position.
type PositionCreator struct {
	Created []string

	// Err, when set, fails the next creation.
	Err error
}

// NewPositionCreator creates an empty recorder.
func NewPositionCreator() *PositionCreator {
	return &PositionCreator{}
}

var _ custody.PositionCreator = (*PositionCreator)(nil)

// CreatePosition records the position.
func (c *PositionCreator) CreatePosition(_ context.Context, position string, _, _ int32, _ uint16) error {
	if c.Err != nil {
		return c.Err
	}
	c.Created = append(c.Created, position)
	return nil
}
