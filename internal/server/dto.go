package server

import (
	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
)

// configResponse is the JSON view of the distribution policy.
type configResponse struct {
	Y0Allocation        uint64 `json:"y0_allocation"`
	InvestorFeeShareBps uint16 `json:"investor_fee_share_bps"`
	MinPayoutLamports   uint64 `json:"min_payout_lamports"`
	DailyCapLamports    uint64 `json:"daily_cap_lamports"`
	CreatorWallet       string `json:"creator_wallet"`
	QuoteMint           string `json:"quote_mint"`
	CreatedAt           int64  `json:"created_at"`
}

func configResponseFrom(cfg *domain.DistributionConfig) configResponse {
	return configResponse{
		Y0Allocation:        cfg.Y0Allocation,
		InvestorFeeShareBps: cfg.InvestorFeeShareBps,
		MinPayoutLamports:   cfg.MinPayoutLamports,
		DailyCapLamports:    cfg.DailyCapLamports,
		CreatorWallet:       cfg.CreatorWallet,
		QuoteMint:           cfg.QuoteMint,
		CreatedAt:           cfg.CreatedAt,
	}
}

// depositorResponse is the JSON view of one investor's ledger record.
type depositorResponse struct {
	Investor              string `json:"investor"`
	TotalSolDeposited     uint64 `json:"total_sol_deposited"`
	TotalUsdcDeposited    uint64 `json:"total_usdc_deposited"`
	CurrentSolBalance     uint64 `json:"current_sol_balance"`
	CurrentUsdcBalance    uint64 `json:"current_usdc_balance"`
	TotalSolWithdrawn     uint64 `json:"total_sol_withdrawn"`
	TotalUsdcWithdrawn    uint64 `json:"total_usdc_withdrawn"`
	FirstDepositTimestamp int64  `json:"first_deposit_timestamp"`
	LastActivityTimestamp int64  `json:"last_activity_timestamp"`
	DepositCount          uint32 `json:"deposit_count"`
	ShareOfVaultBps       uint64 `json:"share_of_vault_bps"`
}

func depositorResponseFrom(r *domain.DepositorRecord, shareBps uint64) depositorResponse {
	return depositorResponse{
		Investor:              r.Investor,
		TotalSolDeposited:     r.TotalSolDeposited,
		TotalUsdcDeposited:    r.TotalUsdcDeposited,
		CurrentSolBalance:     r.CurrentSolBalance,
		CurrentUsdcBalance:    r.CurrentUsdcBalance,
		TotalSolWithdrawn:     r.TotalSolWithdrawn,
		TotalUsdcWithdrawn:    r.TotalUsdcWithdrawn,
		FirstDepositTimestamp: r.FirstDepositTimestamp,
		LastActivityTimestamp: r.LastActivityTimestamp,
		DepositCount:          r.DepositCount,
		ShareOfVaultBps:       shareBps,
	}
}

// vaultStatsResponse is the JSON view of the ledger aggregate.
type vaultStatsResponse struct {
	TotalSolDeposited   uint64 `json:"total_sol_deposited"`
	TotalUsdcDeposited  uint64 `json:"total_usdc_deposited"`
	CurrentTotalSol     uint64 `json:"current_total_sol"`
	CurrentTotalUsdc    uint64 `json:"current_total_usdc"`
	TotalSolWithdrawn   uint64 `json:"total_sol_withdrawn"`
	TotalUsdcWithdrawn  uint64 `json:"total_usdc_withdrawn"`
	DepositorCount      uint32 `json:"depositor_count"`
	LastUpdateTimestamp int64  `json:"last_update_timestamp"`
}

func vaultStatsResponseFrom(s *domain.VaultStats) vaultStatsResponse {
	return vaultStatsResponse{
		TotalSolDeposited:   s.TotalSolDeposited,
		TotalUsdcDeposited:  s.TotalUsdcDeposited,
		CurrentTotalSol:     s.CurrentTotalSol,
		CurrentTotalUsdc:    s.CurrentTotalUsdc,
		TotalSolWithdrawn:   s.TotalSolWithdrawn,
		TotalUsdcWithdrawn:  s.TotalUsdcWithdrawn,
		DepositorCount:      s.DepositorCount,
		LastUpdateTimestamp: s.LastUpdateTimestamp,
	}
}

// crankStateResponse is the JSON view of the day state machine.
type crankStateResponse struct {
	LastDistributionTimestamp int64  `json:"last_distribution_timestamp"`
	CurrentDay                uint32 `json:"current_day"`
	DistributionCount         uint32 `json:"distribution_count"`
	PaginationCursor          uint32 `json:"pagination_cursor"`
	InvestorsProcessedToday   uint32 `json:"investors_processed_today"`
	DailyDistributed          uint64 `json:"daily_distributed"`
	CarryOver                 uint64 `json:"carry_over"`
	DayState                  uint8  `json:"day_state"`
	ClaimedQuoteToday         uint64 `json:"claimed_quote_today"`
	InvestorFeeQuoteToday     uint64 `json:"investor_fee_quote_today"`
	EligibleShareBpsToday     uint16 `json:"eligible_share_bps_today"`
	FLockedBpsToday           uint16 `json:"f_locked_bps_today"`
	FinalPageSeen             bool   `json:"final_page_seen"`
}

func crankStateResponseFrom(c *domain.CrankState) crankStateResponse {
	return crankStateResponse{
		LastDistributionTimestamp: c.LastDistributionTimestamp,
		CurrentDay:                c.CurrentDay,
		DistributionCount:         c.DistributionCount,
		PaginationCursor:          c.PaginationCursor,
		InvestorsProcessedToday:   c.InvestorsProcessedToday,
		DailyDistributed:          c.DailyDistributed,
		CarryOver:                 c.CarryOver,
		DayState:                  uint8(c.DayState),
		ClaimedQuoteToday:         c.ClaimedQuoteToday,
		InvestorFeeQuoteToday:     c.InvestorFeeQuoteToday,
		EligibleShareBpsToday:     c.EligibleShareBpsToday,
		FLockedBpsToday:           c.FLockedBpsToday,
		FinalPageSeen:             c.FinalPageSeen,
	}
}
