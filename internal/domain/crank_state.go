package domain

// DayState tracks where the crank is within a distribution day.
type DayState uint8

const (
	// DayNotStarted means no day has been opened yet.
	DayNotStarted DayState = 0

	// DayInProgress means a day is open and accepting pages.
	DayInProgress DayState = 1

	// DayClosed means the remainder has been routed to the creator.
	DayClosed DayState = 2
)

// String implements fmt.Stringer.
func (s DayState) String() string {
	switch s {
	case DayNotStarted:
		return "not_started"
	case DayInProgress:
		return "in_progress"
	case DayClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// CrankState is the singleton driving the day/page state machine. Only the
// crank logic mutates it; the pagination cursor is the sole idempotency key
// for page processing. Corresponds to the crank_state row in PostgreSQL.
type CrankState struct {
	LastDistributionTimestamp int64
	CurrentDay                uint32
	DistributionCount         uint32

	// PaginationCursor is the index of the next expected page within the
	// current day.
	PaginationCursor        uint32
	InvestorsProcessedToday uint32
	DailyDistributed        uint64

	// CarryOver accumulates dust and cap-rejected remainder. It rolls
	// forward across days and is only ever swept by the day-close transfer
	// of the whole vault balance.
	CarryOver uint64

	DayState DayState

	// Snapshot of the day's eligibility math, computed once at day open.
	ClaimedQuoteToday     uint64
	InvestorFeeQuoteToday uint64
	EligibleShareBpsToday uint16
	FLockedBpsToday       uint16

	// FinalPageSeen latches once a page is accepted with the final-page
	// flag. CloseDay refuses to run until it is set.
	FinalPageSeen bool
}

// CanStartNewDay reports whether the 24 hour cooldown has elapsed.
// A never-distributed state can always start.
func (c *CrankState) CanStartNewDay(now int64) bool {
	if c.LastDistributionTimestamp == 0 {
		return true
	}
	return now-c.LastDistributionTimestamp >= SecondsPerDay
}

// StartNewDay opens a new distribution day. Carry-over is deliberately not
// reset; it rolls forward until swept at some future day close.
func (c *CrankState) StartNewDay(now int64) error {
	if !c.CanStartNewDay(now) {
		return ErrDistributionTooFrequent
	}

	day, err := CheckedAdd(uint64(c.CurrentDay), 1)
	if err != nil || day > 1<<32-1 {
		return ErrMathOverflow
	}

	c.LastDistributionTimestamp = now
	c.CurrentDay = uint32(day)
	c.PaginationCursor = 0
	c.InvestorsProcessedToday = 0
	c.DailyDistributed = 0
	c.DayState = DayInProgress
	c.ClaimedQuoteToday = 0
	c.InvestorFeeQuoteToday = 0
	c.EligibleShareBpsToday = 0
	c.FLockedBpsToday = 0
	c.FinalPageSeen = false
	return nil
}

// AdvanceCursor accepts one page and accounts its investors.
func (c *CrankState) AdvanceCursor(investorsProcessed uint32) error {
	cursor, err := CheckedAdd(uint64(c.PaginationCursor), 1)
	if err != nil || cursor > 1<<32-1 {
		return ErrMathOverflow
	}
	processed, err := CheckedAdd(uint64(c.InvestorsProcessedToday), uint64(investorsProcessed))
	if err != nil || processed > 1<<32-1 {
		return ErrMathOverflow
	}
	c.PaginationCursor = uint32(cursor)
	c.InvestorsProcessedToday = uint32(processed)
	return nil
}

// CloseDay marks the day closed and counts the completed distribution.
func (c *CrankState) CloseDay() error {
	count, err := CheckedAdd(uint64(c.DistributionCount), 1)
	if err != nil || count > 1<<32-1 {
		return ErrMathOverflow
	}
	c.DayState = DayClosed
	c.DistributionCount = uint32(count)
	return nil
}
