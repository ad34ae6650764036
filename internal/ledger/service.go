// Package ledger mutates depositor records and the vault aggregate when
// investors change their locked balance. The custody transfer runs inside
// the store transaction so ledger state and vault holdings never diverge.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/0xtarunkm/star-fee-distribution/internal/custody"
	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
	"github.com/0xtarunkm/star-fee-distribution/internal/keys"
	"github.com/0xtarunkm/star-fee-distribution/internal/observability"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage"
)

// Service owns the deposit/withdrawal ledger.
type Service struct {
	store  storage.LedgerStore
	events storage.EventStore
	vaults custody.Vaults
	clock  clockwork.Clock
	logger *slog.Logger

	solVault  string
	usdcVault string
}

// NewService creates a ledger service. Deposits settle into the derived
// per-asset deposit vaults.
func NewService(store storage.LedgerStore, events storage.EventStore, vaults custody.Vaults, clock clockwork.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		events:    events,
		vaults:    vaults,
		clock:     clock,
		logger:    logger,
		solVault:  keys.DepositVaultAddress("sol"),
		usdcVault: keys.DepositVaultAddress("usdc"),
	}
}

// validateAmounts checks the per-asset bounds. At least one amount must be
// nonzero and every nonzero amount must sit within its [min, max] range.
func validateAmounts(solAmount, usdcAmount uint64) error {
	if solAmount == 0 && usdcAmount == 0 {
		return domain.ErrInvalidDepositAmount
	}
	if solAmount != 0 && (solAmount < domain.MinSolDeposit || solAmount > domain.MaxSolDeposit) {
		return domain.ErrInvalidDepositAmount
	}
	if usdcAmount != 0 && (usdcAmount < domain.MinUsdcDeposit || usdcAmount > domain.MaxUsdcDeposit) {
		return domain.ErrInvalidDepositAmount
	}
	return nil
}

// transferBoth moves the sol leg then the usdc leg. Custody transfers are
// individually atomic but not jointly, so when the second leg fails the
// first leg is refunded before returning; the enclosing ledger transaction
// rolls back and custody must match it.
func (s *Service) transferBoth(ctx context.Context, solSrc, solDst, usdcSrc, usdcDst string, solAmount, usdcAmount uint64) error {
	if solAmount > 0 {
		if err := s.vaults.Transfer(ctx, solSrc, solDst, solAmount); err != nil {
			return fmt.Errorf("sol leg: %w", err)
		}
	}
	if usdcAmount > 0 {
		if err := s.vaults.Transfer(ctx, usdcSrc, usdcDst, usdcAmount); err != nil {
			if solAmount > 0 {
				if rerr := s.vaults.Transfer(ctx, solDst, solSrc, solAmount); rerr != nil {
					// Value is stranded in solDst; surface both failures.
					return fmt.Errorf("usdc leg: %v; sol refund: %w", err, rerr)
				}
			}
			return fmt.Errorf("usdc leg: %w", err)
		}
	}
	return nil
}

// Deposit credits the investor's locked balance. The record is created on
// first deposit and the aggregate depositor count bumps exactly once per
// distinct investor. Custody movement and ledger mutation are one unit.
func (s *Service) Deposit(ctx context.Context, investor string, solAmount, usdcAmount uint64) (*domain.DepositorRecord, error) {
	if investor == "" {
		return nil, domain.ErrInvalidDepositAmount
	}
	if err := validateAmounts(solAmount, usdcAmount); err != nil {
		return nil, err
	}

	now := s.clock.Now().Unix()
	var record *domain.DepositorRecord
	var stats *domain.VaultStats

	err := s.store.InTx(ctx, func(tx storage.LedgerTx) error {
		var err error
		record, err = tx.GetDepositor(ctx, investor)
		firstDeposit := false
		if errors.Is(err, storage.ErrNotFound) {
			record = domain.NewDepositorRecord(investor, now)
			firstDeposit = true
		} else if err != nil {
			return err
		}

		// Move funds first so a custody failure aborts before any
		// ledger mutation is staged.
		if err := s.transferBoth(ctx, investor, s.solVault, investor, s.usdcVault, solAmount, usdcAmount); err != nil {
			return fmt.Errorf("transfer to custody: %w", err)
		}

		if err := record.ApplyDeposit(solAmount, usdcAmount, now); err != nil {
			return err
		}
		if err := tx.PutDepositor(ctx, record); err != nil {
			return err
		}

		stats, err = tx.GetVaultStats(ctx)
		if err != nil {
			return err
		}
		if err := stats.ApplyDeposit(solAmount, usdcAmount, now); err != nil {
			return err
		}
		if firstDeposit {
			stats.DepositorCount++
		}
		return tx.PutVaultStats(ctx, stats)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deposit accepted",
		"investor", investor,
		"sol", solAmount,
		"usdc", usdcAmount,
		"locked_usdc", record.CurrentUsdcBalance)
	observability.RecordDeposit(solAmount, usdcAmount)
	observability.UpdateLedgerGauges(stats.DepositorCount, stats.CurrentTotalUsdc)

	s.appendDepositEvent(ctx, record, solAmount, usdcAmount, now)
	return record, nil
}

// Withdraw debits the investor's locked balance. A withdrawal immediately
// reduces the investor's future payout share; weight is always live.
func (s *Service) Withdraw(ctx context.Context, investor string, solAmount, usdcAmount uint64) (*domain.DepositorRecord, error) {
	if investor == "" {
		return nil, domain.ErrInvalidDepositAmount
	}
	if solAmount == 0 && usdcAmount == 0 {
		return nil, domain.ErrInvalidDepositAmount
	}
	// Withdrawals share the deposit minimums so the vault never services
	// sub-minimum transfers.
	if solAmount != 0 && solAmount < domain.MinSolDeposit {
		return nil, domain.ErrInvalidDepositAmount
	}
	if usdcAmount != 0 && usdcAmount < domain.MinUsdcDeposit {
		return nil, domain.ErrInvalidDepositAmount
	}

	now := s.clock.Now().Unix()
	var record *domain.DepositorRecord
	var stats *domain.VaultStats

	err := s.store.InTx(ctx, func(tx storage.LedgerTx) error {
		var err error
		record, err = tx.GetDepositor(ctx, investor)
		if errors.Is(err, storage.ErrNotFound) {
			return domain.ErrInsufficientTokenBalance
		} else if err != nil {
			return err
		}

		if err := record.ApplyWithdrawal(solAmount, usdcAmount, now); err != nil {
			return err
		}

		if err := s.transferBoth(ctx, s.solVault, investor, s.usdcVault, investor, solAmount, usdcAmount); err != nil {
			return fmt.Errorf("transfer from custody: %w", err)
		}

		if err := tx.PutDepositor(ctx, record); err != nil {
			return err
		}

		stats, err = tx.GetVaultStats(ctx)
		if err != nil {
			return err
		}
		if err := stats.ApplyWithdrawal(solAmount, usdcAmount, now); err != nil {
			return err
		}
		return tx.PutVaultStats(ctx, stats)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal accepted",
		"investor", investor,
		"sol", solAmount,
		"usdc", usdcAmount,
		"locked_usdc", record.CurrentUsdcBalance)
	observability.RecordWithdrawal(solAmount, usdcAmount)
	observability.UpdateLedgerGauges(stats.DepositorCount, stats.CurrentTotalUsdc)

	s.appendWithdrawalEvent(ctx, record, solAmount, usdcAmount, now)
	return record, nil
}

// DepositorView is a depositor record with its derived share of the vault.
type DepositorView struct {
	Record          *domain.DepositorRecord
	ShareOfVaultBps uint64
}

// QueryDepositor fetches a depositor record and its current share of the
// locked total in basis points.
func (s *Service) QueryDepositor(ctx context.Context, investor string) (*DepositorView, error) {
	var view DepositorView
	err := s.store.InTx(ctx, func(tx storage.LedgerTx) error {
		record, err := tx.GetDepositor(ctx, investor)
		if err != nil {
			return err
		}
		stats, err := tx.GetVaultStats(ctx)
		if err != nil {
			return err
		}
		share, err := record.ShareOfVaultBps(stats.CurrentTotalUsdc)
		if err != nil {
			return err
		}
		view = DepositorView{Record: record, ShareOfVaultBps: share}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// QueryVaultStats fetches the aggregate statistics.
func (s *Service) QueryVaultStats(ctx context.Context) (*domain.VaultStats, error) {
	var stats *domain.VaultStats
	err := s.store.InTx(ctx, func(tx storage.LedgerTx) error {
		var err error
		stats, err = tx.GetVaultStats(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Service) appendDepositEvent(ctx context.Context, r *domain.DepositorRecord, solAmount, usdcAmount uint64, now int64) {
	err := s.events.AppendDeposit(ctx, &domain.DepositEvent{
		Investor:           r.Investor,
		SolAmount:          solAmount,
		UsdcAmount:         usdcAmount,
		CurrentSolBalance:  r.CurrentSolBalance,
		CurrentUsdcBalance: r.CurrentUsdcBalance,
		DepositCount:       r.DepositCount,
		Timestamp:          now,
	})
	if err != nil {
		s.logger.Warn("append deposit event failed", "investor", r.Investor, "error", err)
	}
}

func (s *Service) appendWithdrawalEvent(ctx context.Context, r *domain.DepositorRecord, solAmount, usdcAmount uint64, now int64) {
	err := s.events.AppendWithdrawal(ctx, &domain.WithdrawalEvent{
		Investor:           r.Investor,
		SolAmount:          solAmount,
		UsdcAmount:         usdcAmount,
		CurrentSolBalance:  r.CurrentSolBalance,
		CurrentUsdcBalance: r.CurrentUsdcBalance,
		WithdrawalCount:    r.WithdrawalCount,
		Timestamp:          now,
	})
	if err != nil {
		s.logger.Warn("append withdrawal event failed", "investor", r.Investor, "error", err)
	}
}
