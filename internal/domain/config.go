package domain

// Basis point and timing constants for fee distribution.
const (
	// MaxFeeShareBps is the maximum investor fee share (100%).
	MaxFeeShareBps = 10000

	// SecondsPerDay is the cooldown between distribution days.
	SecondsPerDay = 86400

	// DistributionBatchSize is the default number of investors per page.
	DistributionBatchSize = 10
)

// Deposit bounds. Policy constants, not part of DistributionConfig.
const (
	// MinSolDeposit is 0.001 SOL in lamports.
	MinSolDeposit uint64 = 1_000_000

	// MaxSolDeposit is 1000 SOL in lamports.
	MaxSolDeposit uint64 = 1_000_000_000_000

	// MinUsdcDeposit is 0.001 USDC in smallest units.
	MinUsdcDeposit uint64 = 1_000

	// MaxUsdcDeposit is 1M USDC in smallest units.
	MaxUsdcDeposit uint64 = 1_000_000_000_000
)

// DistributionConfig is the singleton distribution policy. Created once by an
// administrative action and immutable thereafter.
// Corresponds to the distribution_config row in PostgreSQL.
type DistributionConfig struct {
	// Y0Allocation is the total investor allocation at TGE, the denominator
	// of the locked-fraction calculation. Always > 0.
	Y0Allocation uint64

	// InvestorFeeShareBps caps the fraction of claimed quote fees investors
	// may ever receive, in basis points (0-10000).
	InvestorFeeShareBps uint16

	// MinPayoutLamports is the dust floor. Payouts below it are withheld and
	// accumulated as carry-over instead of sent.
	MinPayoutLamports uint64

	// DailyCapLamports is the maximum quote amount distributable to investors
	// per day. 0 means unlimited.
	DailyCapLamports uint64

	// CreatorWallet receives the day-close remainder.
	CreatorWallet string

	// QuoteMint identifies the quote asset, used for validation elsewhere.
	QuoteMint string

	// CreatedAt is the unix timestamp of initialization.
	CreatedAt int64
}

// Validate checks the configuration invariants enforced at initialization.
func (c *DistributionConfig) Validate() error {
	if c.Y0Allocation == 0 {
		return ErrInvalidY0Allocation
	}
	if c.InvestorFeeShareBps > MaxFeeShareBps {
		return ErrInvalidFeeShare
	}
	if c.CreatorWallet == "" {
		return ErrCreatorWalletNotProvided
	}
	return nil
}
