package domain

// DepositorRecord tracks an individual investor's deposits and current locked
// balances. Created on first deposit, mutated by every deposit/withdrawal,
// never deleted. The current USDC balance is the investor's distribution
// weight. Corresponds to the depositor_records table in PostgreSQL.
type DepositorRecord struct {
	Investor string // investor wallet address, unique key

	TotalSolDeposited  uint64
	TotalUsdcDeposited uint64
	CurrentSolBalance  uint64
	CurrentUsdcBalance uint64
	TotalSolWithdrawn  uint64
	TotalUsdcWithdrawn uint64

	FirstDepositTimestamp int64
	LastActivityTimestamp int64
	DepositCount          uint32
	WithdrawalCount       uint32
}

// NewDepositorRecord creates an empty record for an investor.
func NewDepositorRecord(investor string, now int64) *DepositorRecord {
	return &DepositorRecord{
		Investor:              investor,
		FirstDepositTimestamp: now,
		LastActivityTimestamp: now,
	}
}

// ApplyDeposit credits the record with a new deposit. The invariant
// currentBalance == totalDeposited - totalWithdrawn is preserved per asset.
func (r *DepositorRecord) ApplyDeposit(solAmount, usdcAmount uint64, now int64) error {
	var err error
	if r.TotalSolDeposited, err = CheckedAdd(r.TotalSolDeposited, solAmount); err != nil {
		return err
	}
	if r.TotalUsdcDeposited, err = CheckedAdd(r.TotalUsdcDeposited, usdcAmount); err != nil {
		return err
	}
	if r.CurrentSolBalance, err = CheckedAdd(r.CurrentSolBalance, solAmount); err != nil {
		return err
	}
	if r.CurrentUsdcBalance, err = CheckedAdd(r.CurrentUsdcBalance, usdcAmount); err != nil {
		return err
	}

	if r.DepositCount == 0 {
		r.FirstDepositTimestamp = now
	}
	r.LastActivityTimestamp = now
	r.DepositCount++
	return nil
}

// ApplyWithdrawal debits the record. Fails with ErrInsufficientTokenBalance
// when a requested amount exceeds the corresponding current balance.
func (r *DepositorRecord) ApplyWithdrawal(solAmount, usdcAmount uint64, now int64) error {
	if solAmount > r.CurrentSolBalance || usdcAmount > r.CurrentUsdcBalance {
		return ErrInsufficientTokenBalance
	}

	var err error
	if r.TotalSolWithdrawn, err = CheckedAdd(r.TotalSolWithdrawn, solAmount); err != nil {
		return err
	}
	if r.TotalUsdcWithdrawn, err = CheckedAdd(r.TotalUsdcWithdrawn, usdcAmount); err != nil {
		return err
	}
	if r.CurrentSolBalance, err = CheckedSub(r.CurrentSolBalance, solAmount); err != nil {
		return err
	}
	if r.CurrentUsdcBalance, err = CheckedSub(r.CurrentUsdcBalance, usdcAmount); err != nil {
		return err
	}

	r.LastActivityTimestamp = now
	r.WithdrawalCount++
	return nil
}

// ShareOfVaultBps reports the investor's share of the current locked total in
// basis points. Returns 0 when the vault is empty.
func (r *DepositorRecord) ShareOfVaultBps(lockedTotal uint64) (uint64, error) {
	if lockedTotal == 0 {
		return 0, nil
	}
	return MulDivFloor(r.CurrentUsdcBalance, MaxFeeShareBps, lockedTotal)
}

// HasDeposits reports whether the investor has ever deposited.
func (r *DepositorRecord) HasDeposits() bool {
	return r.TotalSolDeposited > 0 || r.TotalUsdcDeposited > 0
}
