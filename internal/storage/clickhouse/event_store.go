package clickhouse

import (
	"context"
	"fmt"

	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage"
)

// EventStore implements storage.EventStore using ClickHouse. Events are
// append-only; MergeTree enforces no uniqueness and none is needed.
type EventStore struct {
	conn *Conn
}

// NewEventStore creates a new EventStore.
func NewEventStore(conn *Conn) *EventStore {
	return &EventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

func (s *EventStore) AppendDeposit(ctx context.Context, e *domain.DepositEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}
	return s.insert(ctx, `
		INSERT INTO deposit_events (
			investor, sol_amount, usdc_amount,
			current_sol_balance, current_usdc_balance,
			deposit_count, timestamp
		)`,
		e.Investor, e.SolAmount, e.UsdcAmount,
		e.CurrentSolBalance, e.CurrentUsdcBalance,
		e.DepositCount, e.Timestamp,
	)
}

func (s *EventStore) AppendWithdrawal(ctx context.Context, e *domain.WithdrawalEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}
	return s.insert(ctx, `
		INSERT INTO withdrawal_events (
			investor, sol_amount, usdc_amount,
			current_sol_balance, current_usdc_balance,
			withdrawal_count, timestamp
		)`,
		e.Investor, e.SolAmount, e.UsdcAmount,
		e.CurrentSolBalance, e.CurrentUsdcBalance,
		e.WithdrawalCount, e.Timestamp,
	)
}

func (s *EventStore) AppendFeesClaimed(ctx context.Context, e *domain.FeesClaimedEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}
	return s.insert(ctx, `
		INSERT INTO fees_claimed_events (
			position, base_claimed, quote_claimed, timestamp
		)`,
		e.Position, e.BaseClaimed, e.QuoteClaimed, e.Timestamp,
	)
}

func (s *EventStore) AppendPayoutPage(ctx context.Context, e *domain.PayoutPageEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}
	return s.insert(ctx, `
		INSERT INTO payout_page_events (
			day, page_index, investors_count, quote_available, locked_total,
			f_locked_bps, eligible_share_bps, investor_fee_quote,
			carry_over, daily_distributed, is_final_page, timestamp
		)`,
		e.Day, e.PageIndex, e.InvestorsCount, e.QuoteAvailable, e.LockedTotal,
		e.FLockedBps, e.EligibleShareBps, e.InvestorFeeQuote,
		e.CarryOver, e.DailyDistributed, e.IsFinalPage, e.Timestamp,
	)
}

func (s *EventStore) AppendInvestorPayout(ctx context.Context, e *domain.InvestorPayoutEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}
	return s.insert(ctx, `
		INSERT INTO investor_payout_events (
			day, investor, locked_balance, locked_total,
			calculated_payout, actual_payout, dust, timestamp
		)`,
		e.Day, e.Investor, e.LockedBalance, e.LockedTotal,
		e.CalculatedPayout, e.ActualPayout, e.Dust, e.Timestamp,
	)
}

func (s *EventStore) AppendDayClosed(ctx context.Context, e *domain.DayClosedEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}
	return s.insert(ctx, `
		INSERT INTO day_closed_events (
			day, creator_wallet, creator_remainder,
			investors_processed, daily_distributed, final_carry_over, timestamp
		)`,
		e.Day, e.CreatorWallet, e.CreatorRemainder,
		e.InvestorsProcessed, e.DailyDistributed, e.FinalCarryOver, e.Timestamp,
	)
}

// insert appends one row via a single-row batch.
func (s *EventStore) insert(ctx context.Context, query string, args ...any) error {
	batch, err := s.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	if err := batch.Append(args...); err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}
