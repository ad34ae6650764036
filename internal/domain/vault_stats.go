package domain

// VaultStats is the singleton aggregate over every DepositorRecord. It is
// mutated atomically alongside each record so that CurrentTotalUsdc always
// equals the sum of all current USDC balances (the locked_total used by the
// distribution engine). Corresponds to the vault_stats row in PostgreSQL.
type VaultStats struct {
	TotalSolDeposited  uint64
	TotalUsdcDeposited uint64
	CurrentTotalSol    uint64
	CurrentTotalUsdc   uint64
	TotalSolWithdrawn  uint64
	TotalUsdcWithdrawn uint64
	DepositorCount     uint32

	LastUpdateTimestamp int64
}

// ApplyDeposit credits the aggregate with a new deposit.
func (s *VaultStats) ApplyDeposit(solAmount, usdcAmount uint64, now int64) error {
	var err error
	if s.TotalSolDeposited, err = CheckedAdd(s.TotalSolDeposited, solAmount); err != nil {
		return err
	}
	if s.TotalUsdcDeposited, err = CheckedAdd(s.TotalUsdcDeposited, usdcAmount); err != nil {
		return err
	}
	if s.CurrentTotalSol, err = CheckedAdd(s.CurrentTotalSol, solAmount); err != nil {
		return err
	}
	if s.CurrentTotalUsdc, err = CheckedAdd(s.CurrentTotalUsdc, usdcAmount); err != nil {
		return err
	}
	s.LastUpdateTimestamp = now
	return nil
}

// ApplyWithdrawal debits the aggregate.
func (s *VaultStats) ApplyWithdrawal(solAmount, usdcAmount uint64, now int64) error {
	var err error
	if s.TotalSolWithdrawn, err = CheckedAdd(s.TotalSolWithdrawn, solAmount); err != nil {
		return err
	}
	if s.TotalUsdcWithdrawn, err = CheckedAdd(s.TotalUsdcWithdrawn, usdcAmount); err != nil {
		return err
	}
	if s.CurrentTotalSol, err = CheckedSub(s.CurrentTotalSol, solAmount); err != nil {
		return err
	}
	if s.CurrentTotalUsdc, err = CheckedSub(s.CurrentTotalUsdc, usdcAmount); err != nil {
		return err
	}
	s.LastUpdateTimestamp = now
	return nil
}
