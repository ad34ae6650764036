package storage

import (
	"context"

	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
)

// LedgerTx provides access to the ledger entities within one atomic
// transaction. Every read observes the pre-mutation value under the same
// lock that guards the write, so read-modify-write cycles never interleave.
type LedgerTx interface {
	// GetConfig retrieves the distribution config. Returns ErrNotFound if
	// the config has not been initialized.
	GetConfig(ctx context.Context) (*domain.DistributionConfig, error)

	// InsertConfig stores the config exactly once. Returns ErrDuplicateKey
	// on re-initialization.
	InsertConfig(ctx context.Context, c *domain.DistributionConfig) error

	// GetDepositor retrieves an investor's record. Returns ErrNotFound if
	// the investor has never deposited.
	GetDepositor(ctx context.Context, investor string) (*domain.DepositorRecord, error)

	// PutDepositor inserts or replaces an investor's record.
	PutDepositor(ctx context.Context, r *domain.DepositorRecord) error

	// ListDepositors returns up to limit records with investor key greater
	// than after, ordered by investor key ASC. An empty after starts from
	// the beginning. This is the page enumeration used by crank drivers.
	ListDepositors(ctx context.Context, after string, limit int) ([]*domain.DepositorRecord, error)

	// GetVaultStats retrieves the aggregate statistics. Returns a zero
	// value, not ErrNotFound, before the first deposit.
	GetVaultStats(ctx context.Context) (*domain.VaultStats, error)

	// PutVaultStats replaces the aggregate statistics.
	PutVaultStats(ctx context.Context, s *domain.VaultStats) error

	// GetCrankState retrieves the crank state. Returns a zero value, not
	// ErrNotFound, before the first crank.
	GetCrankState(ctx context.Context) (*domain.CrankState, error)

	// PutCrankState replaces the crank state.
	PutCrankState(ctx context.Context, s *domain.CrankState) error
}

// LedgerStore runs functions against the ledger with all-or-nothing
// semantics: if fn returns an error, no mutation made through the
// transaction is observed. The transaction boundary is the sole rollback
// mechanism; callers never compensate manually.
type LedgerStore interface {
	InTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// EventStore is an append-only sink for protocol events. Append failures
// are reported but events are never read back by the protocol itself.
type EventStore interface {
	AppendDeposit(ctx context.Context, e *domain.DepositEvent) error
	AppendWithdrawal(ctx context.Context, e *domain.WithdrawalEvent) error
	AppendFeesClaimed(ctx context.Context, e *domain.FeesClaimedEvent) error
	AppendPayoutPage(ctx context.Context, e *domain.PayoutPageEvent) error
	AppendInvestorPayout(ctx context.Context, e *domain.InvestorPayoutEvent) error
	AppendDayClosed(ctx context.Context, e *domain.DayClosedEvent) error
}
