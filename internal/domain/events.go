package domain

// Event records emitted by the ledger and the distribution engine. They are
// append-only and feed the analytics event store; nothing in the protocol
// reads them back.

// DepositEvent records a completed deposit.
type DepositEvent struct {
	Investor           string
	SolAmount          uint64
	UsdcAmount         uint64
	CurrentSolBalance  uint64
	CurrentUsdcBalance uint64
	DepositCount       uint32
	Timestamp          int64
}

// WithdrawalEvent records a completed withdrawal.
type WithdrawalEvent struct {
	Investor           string
	SolAmount          uint64
	UsdcAmount         uint64
	CurrentSolBalance  uint64
	CurrentUsdcBalance uint64
	WithdrawalCount    uint32
	Timestamp          int64
}

// FeesClaimedEvent records a successful quote-only fee claim.
type FeesClaimedEvent struct {
	Position     string
	BaseClaimed  uint64
	QuoteClaimed uint64
	Timestamp    int64
}

// PayoutPageEvent records one accepted crank page.
type PayoutPageEvent struct {
	Day               uint32
	PageIndex         uint32
	InvestorsCount    uint32
	QuoteAvailable    uint64
	LockedTotal       uint64
	FLockedBps        uint16
	EligibleShareBps  uint16
	InvestorFeeQuote  uint64
	CarryOver         uint64
	DailyDistributed  uint64
	IsFinalPage       bool
	Timestamp         int64
}

// InvestorPayoutEvent records a single investor distribution.
type InvestorPayoutEvent struct {
	Day              uint32
	Investor         string
	LockedBalance    uint64
	LockedTotal      uint64
	CalculatedPayout uint64
	ActualPayout     uint64
	Dust             uint64
	Timestamp        int64
}

// DayClosedEvent records a day close and the creator remainder sweep.
type DayClosedEvent struct {
	Day                uint32
	CreatorWallet      string
	CreatorRemainder   uint64
	InvestorsProcessed uint32
	DailyDistributed   uint64
	FinalCarryOver     uint64
	Timestamp          int64
}
