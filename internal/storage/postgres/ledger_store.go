package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage"
)

// LedgerStore implements storage.LedgerStore using PostgreSQL. Each InTx
// call runs inside one database transaction; singleton rows are read with
// FOR UPDATE so concurrent crank callers serialize on the row lock and only
// one variant of a contested page can commit.
type LedgerStore struct {
	pool *Pool
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(pool *Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LedgerStore = (*LedgerStore)(nil)

// InTx runs fn inside a database transaction, committing on success and
// rolling back on any error.
func (s *LedgerStore) InTx(ctx context.Context, fn func(tx storage.LedgerTx) error) error {
	pgTx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer pgTx.Rollback(ctx)

	if err := fn(&ledgerTx{tx: pgTx}); err != nil {
		return err
	}

	if err := pgTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ledgerTx implements storage.LedgerTx over one pgx transaction.
type ledgerTx struct {
	tx pgx.Tx
}

var _ storage.LedgerTx = (*ledgerTx)(nil)

func (t *ledgerTx) GetConfig(ctx context.Context) (*domain.DistributionConfig, error) {
	query := `
		SELECT y0_allocation, investor_fee_share_bps, min_payout_lamports,
		       daily_cap_lamports, creator_wallet, quote_mint, created_at
		FROM distribution_config
		WHERE singleton = TRUE
		FOR UPDATE
	`

	var c domain.DistributionConfig
	err := t.tx.QueryRow(ctx, query).Scan(
		&c.Y0Allocation,
		&c.InvestorFeeShareBps,
		&c.MinPayoutLamports,
		&c.DailyCapLamports,
		&c.CreatorWallet,
		&c.QuoteMint,
		&c.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get distribution config: %w", err)
	}
	return &c, nil
}

func (t *ledgerTx) InsertConfig(ctx context.Context, c *domain.DistributionConfig) error {
	if c == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO distribution_config (
			singleton, y0_allocation, investor_fee_share_bps, min_payout_lamports,
			daily_cap_lamports, creator_wallet, quote_mint, created_at
		) VALUES (TRUE, $1, $2, $3, $4, $5, $6, $7)
	`

	_, err := t.tx.Exec(ctx, query,
		c.Y0Allocation,
		c.InvestorFeeShareBps,
		c.MinPayoutLamports,
		c.DailyCapLamports,
		c.CreatorWallet,
		c.QuoteMint,
		c.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert distribution config: %w", err)
	}
	return nil
}

const depositorColumns = `
	investor, total_sol_deposited, total_usdc_deposited,
	current_sol_balance, current_usdc_balance,
	total_sol_withdrawn, total_usdc_withdrawn,
	first_deposit_timestamp, last_activity_timestamp,
	deposit_count, withdrawal_count
`

func (t *ledgerTx) GetDepositor(ctx context.Context, investor string) (*domain.DepositorRecord, error) {
	if investor == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT ` + depositorColumns + `
		FROM depositor_records
		WHERE investor = $1
		FOR UPDATE
	`

	r, err := scanDepositor(t.tx.QueryRow(ctx, query, investor))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get depositor record: %w", err)
	}
	return r, nil
}

func (t *ledgerTx) PutDepositor(ctx context.Context, r *domain.DepositorRecord) error {
	if r == nil || r.Investor == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO depositor_records (` + depositorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (investor) DO UPDATE SET
			total_sol_deposited = EXCLUDED.total_sol_deposited,
			total_usdc_deposited = EXCLUDED.total_usdc_deposited,
			current_sol_balance = EXCLUDED.current_sol_balance,
			current_usdc_balance = EXCLUDED.current_usdc_balance,
			total_sol_withdrawn = EXCLUDED.total_sol_withdrawn,
			total_usdc_withdrawn = EXCLUDED.total_usdc_withdrawn,
			first_deposit_timestamp = EXCLUDED.first_deposit_timestamp,
			last_activity_timestamp = EXCLUDED.last_activity_timestamp,
			deposit_count = EXCLUDED.deposit_count,
			withdrawal_count = EXCLUDED.withdrawal_count
	`

	_, err := t.tx.Exec(ctx, query,
		r.Investor,
		r.TotalSolDeposited,
		r.TotalUsdcDeposited,
		r.CurrentSolBalance,
		r.CurrentUsdcBalance,
		r.TotalSolWithdrawn,
		r.TotalUsdcWithdrawn,
		r.FirstDepositTimestamp,
		r.LastActivityTimestamp,
		r.DepositCount,
		r.WithdrawalCount,
	)
	if err != nil {
		return fmt.Errorf("put depositor record: %w", err)
	}
	return nil
}

func (t *ledgerTx) ListDepositors(ctx context.Context, after string, limit int) ([]*domain.DepositorRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT ` + depositorColumns + `
		FROM depositor_records
		WHERE investor > $1
		ORDER BY investor ASC
		LIMIT $2
	`

	rows, err := t.tx.Query(ctx, query, after, limit)
	if err != nil {
		return nil, fmt.Errorf("list depositor records: %w", err)
	}
	defer rows.Close()

	var records []*domain.DepositorRecord
	for rows.Next() {
		r, err := scanDepositor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan depositor row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate depositor rows: %w", err)
	}
	return records, nil
}

func (t *ledgerTx) GetVaultStats(ctx context.Context) (*domain.VaultStats, error) {
	query := `
		SELECT total_sol_deposited, total_usdc_deposited,
		       current_total_sol, current_total_usdc,
		       total_sol_withdrawn, total_usdc_withdrawn,
		       depositor_count, last_update_timestamp
		FROM vault_stats
		WHERE singleton = TRUE
		FOR UPDATE
	`

	var s domain.VaultStats
	err := t.tx.QueryRow(ctx, query).Scan(
		&s.TotalSolDeposited,
		&s.TotalUsdcDeposited,
		&s.CurrentTotalSol,
		&s.CurrentTotalUsdc,
		&s.TotalSolWithdrawn,
		&s.TotalUsdcWithdrawn,
		&s.DepositorCount,
		&s.LastUpdateTimestamp,
	)
	if err != nil {
		if isNotFoundError(err) {
			// Zero value before first deposit.
			return &domain.VaultStats{}, nil
		}
		return nil, fmt.Errorf("get vault stats: %w", err)
	}
	return &s, nil
}

func (t *ledgerTx) PutVaultStats(ctx context.Context, s *domain.VaultStats) error {
	if s == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO vault_stats (
			singleton, total_sol_deposited, total_usdc_deposited,
			current_total_sol, current_total_usdc,
			total_sol_withdrawn, total_usdc_withdrawn,
			depositor_count, last_update_timestamp
		) VALUES (TRUE, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (singleton) DO UPDATE SET
			total_sol_deposited = EXCLUDED.total_sol_deposited,
			total_usdc_deposited = EXCLUDED.total_usdc_deposited,
			current_total_sol = EXCLUDED.current_total_sol,
			current_total_usdc = EXCLUDED.current_total_usdc,
			total_sol_withdrawn = EXCLUDED.total_sol_withdrawn,
			total_usdc_withdrawn = EXCLUDED.total_usdc_withdrawn,
			depositor_count = EXCLUDED.depositor_count,
			last_update_timestamp = EXCLUDED.last_update_timestamp
	`

	_, err := t.tx.Exec(ctx, query,
		s.TotalSolDeposited,
		s.TotalUsdcDeposited,
		s.CurrentTotalSol,
		s.CurrentTotalUsdc,
		s.TotalSolWithdrawn,
		s.TotalUsdcWithdrawn,
		s.DepositorCount,
		s.LastUpdateTimestamp,
	)
	if err != nil {
		return fmt.Errorf("put vault stats: %w", err)
	}
	return nil
}

func (t *ledgerTx) GetCrankState(ctx context.Context) (*domain.CrankState, error) {
	query := `
		SELECT last_distribution_timestamp, current_day, distribution_count,
		       pagination_cursor, investors_processed_today, daily_distributed,
		       carry_over, day_state,
		       claimed_quote_today, investor_fee_quote_today,
		       eligible_share_bps_today, f_locked_bps_today, final_page_seen
		FROM crank_state
		WHERE singleton = TRUE
		FOR UPDATE
	`

	var s domain.CrankState
	var dayState uint8
	err := t.tx.QueryRow(ctx, query).Scan(
		&s.LastDistributionTimestamp,
		&s.CurrentDay,
		&s.DistributionCount,
		&s.PaginationCursor,
		&s.InvestorsProcessedToday,
		&s.DailyDistributed,
		&s.CarryOver,
		&dayState,
		&s.ClaimedQuoteToday,
		&s.InvestorFeeQuoteToday,
		&s.EligibleShareBpsToday,
		&s.FLockedBpsToday,
		&s.FinalPageSeen,
	)
	if err != nil {
		if isNotFoundError(err) {
			// Zero value before the first crank.
			return &domain.CrankState{}, nil
		}
		return nil, fmt.Errorf("get crank state: %w", err)
	}
	s.DayState = domain.DayState(dayState)
	return &s, nil
}

func (t *ledgerTx) PutCrankState(ctx context.Context, s *domain.CrankState) error {
	if s == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO crank_state (
			singleton, last_distribution_timestamp, current_day, distribution_count,
			pagination_cursor, investors_processed_today, daily_distributed,
			carry_over, day_state,
			claimed_quote_today, investor_fee_quote_today,
			eligible_share_bps_today, f_locked_bps_today, final_page_seen
		) VALUES (TRUE, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (singleton) DO UPDATE SET
			last_distribution_timestamp = EXCLUDED.last_distribution_timestamp,
			current_day = EXCLUDED.current_day,
			distribution_count = EXCLUDED.distribution_count,
			pagination_cursor = EXCLUDED.pagination_cursor,
			investors_processed_today = EXCLUDED.investors_processed_today,
			daily_distributed = EXCLUDED.daily_distributed,
			carry_over = EXCLUDED.carry_over,
			day_state = EXCLUDED.day_state,
			claimed_quote_today = EXCLUDED.claimed_quote_today,
			investor_fee_quote_today = EXCLUDED.investor_fee_quote_today,
			eligible_share_bps_today = EXCLUDED.eligible_share_bps_today,
			f_locked_bps_today = EXCLUDED.f_locked_bps_today,
			final_page_seen = EXCLUDED.final_page_seen
	`

	_, err := t.tx.Exec(ctx, query,
		s.LastDistributionTimestamp,
		s.CurrentDay,
		s.DistributionCount,
		s.PaginationCursor,
		s.InvestorsProcessedToday,
		s.DailyDistributed,
		s.CarryOver,
		uint8(s.DayState),
		s.ClaimedQuoteToday,
		s.InvestorFeeQuoteToday,
		s.EligibleShareBpsToday,
		s.FLockedBpsToday,
		s.FinalPageSeen,
	)
	if err != nil {
		return fmt.Errorf("put crank state: %w", err)
	}
	return nil
}

// scanDepositor scans a single row into a DepositorRecord.
func scanDepositor(row pgx.Row) (*domain.DepositorRecord, error) {
	var r domain.DepositorRecord
	err := row.Scan(
		&r.Investor,
		&r.TotalSolDeposited,
		&r.TotalUsdcDeposited,
		&r.CurrentSolBalance,
		&r.CurrentUsdcBalance,
		&r.TotalSolWithdrawn,
		&r.TotalUsdcWithdrawn,
		&r.FirstDepositTimestamp,
		&r.LastActivityTimestamp,
		&r.DepositCount,
		&r.WithdrawalCount,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
