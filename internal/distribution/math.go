package distribution

import "github.com/0xtarunkm/star-fee-distribution/internal/domain"

// EligibleShare is the once-per-day eligibility snapshot: how much of the
// claimed quote the investor pool may receive, capped by both the config
// share and the fraction of the genesis allocation still locked.
type EligibleShare struct {
	LockedTotal      uint64
	FLockedBps       uint16
	EligibleShareBps uint16
	InvestorFeeQuote uint64
}

// ComputeEligibleShare applies the floor-division eligibility math.
//
//	fLockedBps       = floor(lockedTotal * 10000 / y0Allocation)
//	eligibleShareBps = min(investorFeeShareBps, fLockedBps)
//	investorFeeQuote = floor(claimedQuote * eligibleShareBps / 10000)
//
// A fully unlocked pool (lockedTotal == 0) yields a zero investor share;
// everything routes to the creator at close.
func ComputeEligibleShare(claimedQuote, lockedTotal, y0Allocation uint64, investorFeeShareBps uint16) (EligibleShare, error) {
	if y0Allocation == 0 {
		return EligibleShare{}, domain.ErrInvalidY0Allocation
	}

	fLockedRaw, err := domain.MulDivFloor(lockedTotal, domain.MaxFeeShareBps, y0Allocation)
	if err != nil {
		return EligibleShare{}, err
	}

	eligible := uint64(investorFeeShareBps)
	if fLockedRaw < eligible {
		eligible = fLockedRaw
	}

	investorFeeQuote, err := domain.MulDivFloor(claimedQuote, eligible, domain.MaxFeeShareBps)
	if err != nil {
		return EligibleShare{}, err
	}

	// fLocked can exceed 10000 when more than the genesis allocation is
	// locked; clamp for reporting since eligibility is already bounded.
	fLocked := fLockedRaw
	if fLocked > domain.MaxFeeShareBps {
		fLocked = domain.MaxFeeShareBps
	}

	return EligibleShare{
		LockedTotal:      lockedTotal,
		FLockedBps:       uint16(fLocked),
		EligibleShareBps: uint16(eligible),
		InvestorFeeQuote: investorFeeQuote,
	}, nil
}

// InvestorPayout computes one investor's floor-weighted slice of the day's
// investor fee. A single floor division avoids the rounding loss of a
// separately materialized fractional weight.
func InvestorPayout(investorFeeQuote, lockedBalance, lockedTotal uint64) (uint64, error) {
	if lockedTotal == 0 {
		return 0, nil
	}
	return domain.MulDivFloor(investorFeeQuote, lockedBalance, lockedTotal)
}
