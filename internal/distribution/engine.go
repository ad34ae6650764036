// Package distribution implements the day/page state machine that pays
// claimed quote fees out to investors pro-rata by locked balance, with the
// remainder routed to the creator at day close.
package distribution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/0xtarunkm/star-fee-distribution/internal/custody"
	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
	"github.com/0xtarunkm/star-fee-distribution/internal/guard"
	"github.com/0xtarunkm/star-fee-distribution/internal/observability"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage"
)

// Engine drives the distribution crank. Every operation is one atomic
// state transition; the pagination cursor in CrankState is the sole
// double-payment defense, so all cursor reads and writes happen inside
// the same store transaction.
type Engine struct {
	store      storage.LedgerStore
	events     storage.EventStore
	vaults     custody.Vaults
	guard      *guard.Guard
	clock      clockwork.Clock
	logger     *slog.Logger
	quoteVault string
}

// NewEngine creates a distribution engine paying out of quoteVault.
func NewEngine(store storage.LedgerStore, events storage.EventStore, vaults custody.Vaults, g *guard.Guard, quoteVault string, clock clockwork.Clock, logger *slog.Logger) *Engine {
	return &Engine{
		store:      store,
		events:     events,
		vaults:     vaults,
		guard:      g,
		clock:      clock,
		logger:     logger,
		quoteVault: quoteVault,
	}
}

// InitializeConfig creates the immutable distribution config. Exactly one
// initialization ever succeeds.
func (e *Engine) InitializeConfig(ctx context.Context, cfg *domain.DistributionConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.CreatedAt == 0 {
		cfg.CreatedAt = e.clock.Now().Unix()
	}

	err := e.store.InTx(ctx, func(tx storage.LedgerTx) error {
		return tx.InsertConfig(ctx, cfg)
	})
	if errors.Is(err, storage.ErrDuplicateKey) {
		return domain.ErrConfigAlreadyInitialized
	}
	if err != nil {
		return err
	}

	e.logger.Info("distribution config initialized",
		"y0_allocation", cfg.Y0Allocation,
		"investor_fee_share_bps", cfg.InvestorFeeShareBps,
		"creator_wallet", cfg.CreatorWallet)
	return nil
}

// ClaimFees runs the guarded fee claim. The claimed quote lands in the
// quote vault and becomes this day's distributable amount at day open.
func (e *Engine) ClaimFees(ctx context.Context, position string) (guard.ClaimResult, error) {
	res, err := e.guard.ClaimFees(ctx, position)
	if err != nil {
		reason := "claim"
		if errors.Is(err, domain.ErrBaseFeesDetected) {
			reason = "base_fees"
		} else if errors.Is(err, domain.ErrNoFeesToClaim) {
			reason = "nothing_to_claim"
		}
		observability.RecordClaimFailure(reason)
		return guard.ClaimResult{}, err
	}

	observability.RecordClaim(res.QuoteClaimed)
	e.appendEvent(ctx, "fees claimed", func() error {
		return e.events.AppendFeesClaimed(ctx, &domain.FeesClaimedEvent{
			Position:     position,
			BaseClaimed:  res.BaseClaimed,
			QuoteClaimed: res.QuoteClaimed,
			Timestamp:    e.clock.Now().Unix(),
		})
	})
	return res, nil
}

// StartOrContinueDay is the entry point of every crank invocation. Opening
// a day snapshots the eligibility math against the quote vault balance and
// the live locked total; continuing an open day is a no-op. Carry-over is
// never reset, it stays in the vault until a close sweeps it.
func (e *Engine) StartOrContinueDay(ctx context.Context) (*domain.CrankState, error) {
	now := e.clock.Now().Unix()
	var state *domain.CrankState

	err := e.store.InTx(ctx, func(tx storage.LedgerTx) error {
		cfg, err := tx.GetConfig(ctx)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		state, err = tx.GetCrankState(ctx)
		if err != nil {
			return err
		}

		if err := e.guard.EnsureQuoteOnly(ctx); err != nil {
			return err
		}

		if state.DayState == domain.DayInProgress {
			// Multi-transaction paging within one day.
			return nil
		}
		if !state.CanStartNewDay(now) {
			return domain.ErrDistributionTooFrequent
		}

		claimedQuote, err := e.vaults.Balance(ctx, e.quoteVault)
		if err != nil {
			return fmt.Errorf("read quote vault: %w", err)
		}
		if claimedQuote == 0 {
			// Nothing to distribute: fail fast instead of opening an
			// empty day and burning the cooldown window.
			return domain.ErrNoFeesToClaim
		}

		stats, err := tx.GetVaultStats(ctx)
		if err != nil {
			return err
		}

		share, err := ComputeEligibleShare(claimedQuote, stats.CurrentTotalUsdc, cfg.Y0Allocation, cfg.InvestorFeeShareBps)
		if err != nil {
			return err
		}

		if err := state.StartNewDay(now); err != nil {
			return err
		}
		state.ClaimedQuoteToday = claimedQuote
		state.InvestorFeeQuoteToday = share.InvestorFeeQuote
		state.EligibleShareBpsToday = share.EligibleShareBps
		state.FLockedBpsToday = share.FLockedBps

		e.logger.Info("distribution day opened",
			"day", state.CurrentDay,
			"claimed_quote", claimedQuote,
			"locked_total", share.LockedTotal,
			"eligible_share_bps", share.EligibleShareBps,
			"investor_fee_quote", share.InvestorFeeQuote,
			"carry_over", state.CarryOver)
		return tx.PutCrankState(ctx, state)
	})
	if err != nil {
		return nil, err
	}

	observability.UpdateCrankGauges(uint8(state.DayState), state.DailyDistributed, state.CarryOver)
	return state, nil
}

// ProcessPage accepts exactly the next expected page. Resubmitting an
// already-accepted page or skipping ahead fails with
// ErrInvalidPaginationCursor; this is the idempotency contract that makes
// the permissionless crank safe.
func (e *Engine) ProcessPage(ctx context.Context, pageIndex, investorsCount uint32, isFinalPage bool) (*domain.CrankState, error) {
	now := e.clock.Now().Unix()
	var state *domain.CrankState
	var lockedTotal uint64

	err := e.store.InTx(ctx, func(tx storage.LedgerTx) error {
		var err error
		state, err = tx.GetCrankState(ctx)
		if err != nil {
			return err
		}

		switch state.DayState {
		case domain.DayNotStarted:
			return domain.ErrDistributionNotStarted
		case domain.DayClosed:
			return domain.ErrDayAlreadyClosed
		}

		if err := e.guard.EnsureQuoteOnly(ctx); err != nil {
			return err
		}

		if pageIndex != state.PaginationCursor {
			return domain.ErrInvalidPaginationCursor
		}
		if err := state.AdvanceCursor(investorsCount); err != nil {
			return err
		}
		if isFinalPage {
			state.FinalPageSeen = true
		}

		stats, err := tx.GetVaultStats(ctx)
		if err != nil {
			return err
		}
		lockedTotal = stats.CurrentTotalUsdc
		return tx.PutCrankState(ctx, state)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("page accepted",
		"day", state.CurrentDay,
		"page", pageIndex,
		"investors", investorsCount,
		"final", isFinalPage)
	observability.RecordPage()

	e.appendEvent(ctx, "payout page", func() error {
		return e.events.AppendPayoutPage(ctx, &domain.PayoutPageEvent{
			Day:              state.CurrentDay,
			PageIndex:        pageIndex,
			InvestorsCount:   investorsCount,
			QuoteAvailable:   state.ClaimedQuoteToday,
			LockedTotal:      lockedTotal,
			FLockedBps:       state.FLockedBpsToday,
			EligibleShareBps: state.EligibleShareBpsToday,
			InvestorFeeQuote: state.InvestorFeeQuoteToday,
			CarryOver:        state.CarryOver,
			DailyDistributed: state.DailyDistributed,
			IsFinalPage:      isFinalPage,
			Timestamp:        now,
		})
	})
	return state, nil
}

// Payout reports the result of one investor distribution.
type Payout struct {
	Investor    string
	Calculated  uint64
	Transferred uint64
	Withheld    uint64
}

// DistributeToInvestor pays one investor their floor-weighted slice of the
// day's investor fee. Weight is live: the record's current balance over the
// current locked total at execution time. Dust below the minimum payout and
// cap shortfall are withheld into carry-over instead of transferred.
func (e *Engine) DistributeToInvestor(ctx context.Context, investor string) (*Payout, error) {
	now := e.clock.Now().Unix()
	var payout *Payout
	var state *domain.CrankState

	err := e.store.InTx(ctx, func(tx storage.LedgerTx) error {
		cfg, err := tx.GetConfig(ctx)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		state, err = tx.GetCrankState(ctx)
		if err != nil {
			return err
		}
		switch state.DayState {
		case domain.DayNotStarted:
			return domain.ErrDistributionNotStarted
		case domain.DayClosed:
			return domain.ErrDayAlreadyClosed
		}

		if err := e.guard.EnsureQuoteOnly(ctx); err != nil {
			return err
		}

		record, err := tx.GetDepositor(ctx, investor)
		if err != nil {
			return err
		}
		stats, err := tx.GetVaultStats(ctx)
		if err != nil {
			return err
		}

		calculated, err := InvestorPayout(state.InvestorFeeQuoteToday, record.CurrentUsdcBalance, stats.CurrentTotalUsdc)
		if err != nil {
			return err
		}

		transfer := calculated
		var withheld uint64

		// Dust below the minimum is withheld entirely.
		if transfer > 0 && transfer < cfg.MinPayoutLamports {
			withheld = transfer
			transfer = 0
		}

		// Cap truncation. A cap already exhausted to zero with a nonzero
		// computed payout signals callers to stop paging.
		if transfer > 0 && cfg.DailyCapLamports != 0 {
			remaining, err := domain.CheckedSub(cfg.DailyCapLamports, state.DailyDistributed)
			if err != nil {
				return err
			}
			if remaining == 0 {
				return domain.ErrDailyCapExceeded
			}
			if transfer > remaining {
				withheld, err = domain.CheckedAdd(withheld, transfer-remaining)
				if err != nil {
					return err
				}
				transfer = remaining
			}
		}

		if transfer > 0 {
			// Stage the counter before moving tokens: an overflow must
			// abort while custody is still untouched.
			distributed, err := domain.CheckedAdd(state.DailyDistributed, transfer)
			if err != nil {
				return err
			}
			if err := e.vaults.Transfer(ctx, e.quoteVault, investor, transfer); err != nil {
				return fmt.Errorf("transfer payout: %w", err)
			}
			state.DailyDistributed = distributed
		}
		if withheld > 0 {
			if state.CarryOver, err = domain.CheckedAdd(state.CarryOver, withheld); err != nil {
				return err
			}
		}

		payout = &Payout{
			Investor:    investor,
			Calculated:  calculated,
			Transferred: transfer,
			Withheld:    withheld,
		}

		e.appendInvestorPayoutEvent(ctx, state, record.CurrentUsdcBalance, stats.CurrentTotalUsdc, payout, now)
		return tx.PutCrankState(ctx, state)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("investor payout",
		"investor", investor,
		"calculated", payout.Calculated,
		"transferred", payout.Transferred,
		"withheld", payout.Withheld)
	observability.RecordPayout(payout.Transferred, payout.Withheld)
	observability.UpdateCrankGauges(uint8(state.DayState), state.DailyDistributed, state.CarryOver)
	return payout, nil
}

// CloseDay sweeps the entire remaining quote vault balance to the creator
// wallet and closes the day. The sweep folds in the uneligible share and
// every carry-over remainder, so no value is ever stranded in the vault.
func (e *Engine) CloseDay(ctx context.Context, creatorWallet string) (uint64, error) {
	now := e.clock.Now().Unix()
	var state *domain.CrankState
	var remainder uint64

	err := e.store.InTx(ctx, func(tx storage.LedgerTx) error {
		cfg, err := tx.GetConfig(ctx)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if creatorWallet == "" || creatorWallet != cfg.CreatorWallet {
			return domain.ErrCreatorWalletNotProvided
		}

		state, err = tx.GetCrankState(ctx)
		if err != nil {
			return err
		}
		switch state.DayState {
		case domain.DayNotStarted:
			return domain.ErrDistributionNotStarted
		case domain.DayClosed:
			return domain.ErrDayAlreadyClosed
		}
		if !state.FinalPageSeen {
			return domain.ErrDayNotComplete
		}

		remainder, err = e.vaults.Balance(ctx, e.quoteVault)
		if err != nil {
			return fmt.Errorf("read quote vault: %w", err)
		}
		if remainder > 0 {
			if err := e.vaults.Transfer(ctx, e.quoteVault, creatorWallet, remainder); err != nil {
				return fmt.Errorf("transfer creator remainder: %w", err)
			}
		}

		if err := state.CloseDay(); err != nil {
			return err
		}
		return tx.PutCrankState(ctx, state)
	})
	if err != nil {
		return 0, err
	}

	e.logger.Info("day closed",
		"day", state.CurrentDay,
		"creator_remainder", remainder,
		"investors_processed", state.InvestorsProcessedToday,
		"daily_distributed", state.DailyDistributed,
		"carry_over", state.CarryOver)
	observability.RecordDayClosed()
	observability.UpdateCrankGauges(uint8(state.DayState), state.DailyDistributed, state.CarryOver)

	e.appendEvent(ctx, "day closed", func() error {
		return e.events.AppendDayClosed(ctx, &domain.DayClosedEvent{
			Day:                state.CurrentDay,
			CreatorWallet:      creatorWallet,
			CreatorRemainder:   remainder,
			InvestorsProcessed: state.InvestorsProcessedToday,
			DailyDistributed:   state.DailyDistributed,
			FinalCarryOver:     state.CarryOver,
			Timestamp:          now,
		})
	})
	return remainder, nil
}

// QueryCrankState fetches the current crank state.
func (e *Engine) QueryCrankState(ctx context.Context) (*domain.CrankState, error) {
	var state *domain.CrankState
	err := e.store.InTx(ctx, func(tx storage.LedgerTx) error {
		var err error
		state, err = tx.GetCrankState(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// QueryConfig fetches the distribution config.
func (e *Engine) QueryConfig(ctx context.Context) (*domain.DistributionConfig, error) {
	var cfg *domain.DistributionConfig
	err := e.store.InTx(ctx, func(tx storage.LedgerTx) error {
		var err error
		cfg, err = tx.GetConfig(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (e *Engine) appendInvestorPayoutEvent(ctx context.Context, state *domain.CrankState, lockedBalance, lockedTotal uint64, p *Payout, now int64) {
	err := e.events.AppendInvestorPayout(ctx, &domain.InvestorPayoutEvent{
		Day:              state.CurrentDay,
		Investor:         p.Investor,
		LockedBalance:    lockedBalance,
		LockedTotal:      lockedTotal,
		CalculatedPayout: p.Calculated,
		ActualPayout:     p.Transferred,
		Dust:             p.Withheld,
		Timestamp:        now,
	})
	if err != nil {
		e.logger.Warn("append investor payout event failed", "investor", p.Investor, "error", err)
	}
}

func (e *Engine) appendEvent(ctx context.Context, what string, fn func() error) {
	if err := fn(); err != nil {
		e.logger.Warn("append event failed", "event", what, "error", err)
	}
}
