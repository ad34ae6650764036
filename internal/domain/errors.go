package domain

import "errors"

// Configuration errors, detected at initialization. The config is immutable
// once accepted.
var (
	// ErrInvalidY0Allocation is returned when the TGE allocation is zero.
	ErrInvalidY0Allocation = errors.New("invalid Y0 allocation amount")

	// ErrInvalidFeeShare is returned when the investor fee share exceeds 10000 bps.
	ErrInvalidFeeShare = errors.New("investor fee share exceeds 10000 bps")

	// ErrCreatorWalletNotProvided is returned when the creator wallet is empty or invalid.
	ErrCreatorWalletNotProvided = errors.New("creator wallet not provided")

	// ErrConfigAlreadyInitialized is returned on re-initialization attempts.
	ErrConfigAlreadyInitialized = errors.New("distribution config already initialized")
)

// Guard violations.
var (
	// ErrBaseFeesDetected is returned when any base-asset fee is observed.
	// Fatal to the triggering operation; no partial distribution occurs.
	ErrBaseFeesDetected = errors.New("base fees detected - quote-only position violated")

	// ErrNoFeesToClaim is returned when the quote vault holds nothing to distribute.
	ErrNoFeesToClaim = errors.New("no fees available to claim")
)

// Timing and sequencing violations. All are recoverable by the caller.
var (
	// ErrDistributionTooFrequent is returned when a new day is started before
	// the 24 hour cooldown has elapsed.
	ErrDistributionTooFrequent = errors.New("distribution too frequent - must wait 24 hours")

	// ErrInvalidPaginationCursor is returned when a page index does not match
	// the expected cursor. Resubmission of a processed page fails with this.
	ErrInvalidPaginationCursor = errors.New("invalid pagination cursor")

	// ErrDistributionNotStarted is returned when a per-investor or close
	// operation runs outside an in-progress day.
	ErrDistributionNotStarted = errors.New("distribution not started for this day")

	// ErrDayAlreadyClosed is returned when paging into a closed day.
	ErrDayAlreadyClosed = errors.New("day already closed - cannot distribute")

	// ErrDayNotComplete is returned when closing a day before the final page
	// has been processed.
	ErrDayNotComplete = errors.New("final page not processed - cannot close day")
)

// Cap and threshold conditions.
var (
	// ErrDailyCapExceeded is returned when the daily cap is already exhausted
	// and a nonzero payout was computed. Signals callers to stop paging.
	ErrDailyCapExceeded = errors.New("daily distribution cap exceeded")

	// ErrPayoutBelowMinimum reports a payout withheld by the dust floor.
	ErrPayoutBelowMinimum = errors.New("payout below minimum threshold")
)

// Input validation errors on deposit/withdraw. No state is mutated.
var (
	// ErrInvalidDepositAmount is returned when deposit amounts are out of bounds.
	ErrInvalidDepositAmount = errors.New("invalid deposit amount - must be within valid range")

	// ErrInsufficientTokenBalance is returned when a withdrawal exceeds the
	// investor's current balance or the vault holds too little.
	ErrInsufficientTokenBalance = errors.New("insufficient token balance")
)

// ErrMathOverflow is returned when accounting arithmetic would wrap.
// Overflow always fails closed.
var ErrMathOverflow = errors.New("math overflow occurred during calculation")

// Honorary position validation errors.
var (
	// ErrBaseWeightMustBeZero rejects positions configured with any base weight.
	ErrBaseWeightMustBeZero = errors.New("base weight must be zero for quote-only fee collection")

	// ErrQuoteWeightMustBe10000 rejects positions not fully quote weighted.
	ErrQuoteWeightMustBe10000 = errors.New("quote weight must be 10000 bps for quote-only fee collection")

	// ErrLowerTickTooHigh rejects positions whose lower tick does not reach the domain floor.
	ErrLowerTickTooHigh = errors.New("lower tick must be <= -443636 for wide range")

	// ErrUpperTickTooLow rejects positions whose upper tick does not reach the domain ceiling.
	ErrUpperTickTooLow = errors.New("upper tick must be >= 443636 for wide range")

	// ErrInvalidFeeTier rejects fee tiers outside the supported set.
	ErrInvalidFeeTier = errors.New("invalid fee tier - must be 100, 500, 3000, or 10000 bps")
)
