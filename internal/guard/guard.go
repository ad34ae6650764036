package guard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/0xtarunkm/star-fee-distribution/internal/custody"
	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
)

// Guard enforces the quote-only invariant at runtime. The position is
// configured so base fees cannot structurally accrue, but the guard
// re-checks on every claim and every crank step rather than trusting
// that configuration.
type Guard struct {
	vaults     custody.Vaults
	claimer    custody.FeeClaimer
	baseVault  string
	quoteVault string
	logger     *slog.Logger
}

// New creates a Guard watching the given base and quote vaults.
func New(vaults custody.Vaults, claimer custody.FeeClaimer, baseVault, quoteVault string, logger *slog.Logger) *Guard {
	return &Guard{
		vaults:     vaults,
		claimer:    claimer,
		baseVault:  baseVault,
		quoteVault: quoteVault,
		logger:     logger,
	}
}

// ClaimResult reports the vault deltas observed across one fee claim.
type ClaimResult struct {
	BaseClaimed  uint64
	QuoteClaimed uint64
}

// ClaimFees snapshots both vault balances, invokes the claim collaborator,
// and recomputes the deltas. Any base-asset accrual is fatal: the claimed
// amount never becomes eligible for distribution.
func (g *Guard) ClaimFees(ctx context.Context, position string) (ClaimResult, error) {
	baseBefore, err := g.vaults.Balance(ctx, g.baseVault)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("read base vault: %w", err)
	}
	quoteBefore, err := g.vaults.Balance(ctx, g.quoteVault)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("read quote vault: %w", err)
	}

	if err := g.claimer.ClaimPositionFees(ctx, position); err != nil {
		return ClaimResult{}, fmt.Errorf("claim position fees: %w", err)
	}

	baseAfter, err := g.vaults.Balance(ctx, g.baseVault)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("read base vault: %w", err)
	}
	quoteAfter, err := g.vaults.Balance(ctx, g.quoteVault)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("read quote vault: %w", err)
	}

	baseClaimed, err := domain.CheckedSub(baseAfter, baseBefore)
	if err != nil {
		return ClaimResult{}, err
	}
	quoteClaimed, err := domain.CheckedSub(quoteAfter, quoteBefore)
	if err != nil {
		return ClaimResult{}, err
	}

	if baseClaimed != 0 {
		g.logger.Error("base fees detected on claim",
			"position", position,
			"base_claimed", baseClaimed)
		return ClaimResult{}, domain.ErrBaseFeesDetected
	}
	if quoteClaimed == 0 && quoteAfter == 0 {
		return ClaimResult{}, domain.ErrNoFeesToClaim
	}

	g.logger.Info("fees claimed",
		"position", position,
		"quote_claimed", quoteClaimed)
	return ClaimResult{BaseClaimed: baseClaimed, QuoteClaimed: quoteClaimed}, nil
}

// EnsureQuoteOnly fails unless the base vault balance is exactly zero.
// Called before every payout step to catch base fees accruing between
// the claim and the crank.
func (g *Guard) EnsureQuoteOnly(ctx context.Context) error {
	base, err := g.vaults.Balance(ctx, g.baseVault)
	if err != nil {
		return fmt.Errorf("read base vault: %w", err)
	}
	if base != 0 {
		g.logger.Error("base vault not empty", "balance", base)
		return domain.ErrBaseFeesDetected
	}
	return nil
}

// QuoteBalance reads the quote vault balance.
func (g *Guard) QuoteBalance(ctx context.Context) (uint64, error) {
	return g.vaults.Balance(ctx, g.quoteVault)
}
