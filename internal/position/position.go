package position

import (
	"context"

	"github.com/0xtarunkm/star-fee-distribution/internal/custody"
	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
)

// Tick bounds of the full valid price domain. The position must span the
// whole domain so fee accrual cannot concentrate in the base asset.
const (
	MaxLowerTick = -443636
	MinUpperTick = 443636
)

// Spec describes the liquidity position configuration validated before
// creation. Only a quote-weighted, full-range position on a known fee
// tier is ever accepted.
type Spec struct {
	Position       string
	BaseWeightBps  uint16
	QuoteWeightBps uint16
	LowerTick      int32
	UpperTick      int32
	FeeTierBps     uint16
}

// Validate checks the static configuration and returns the specific
// violation, or nil when the spec is acceptable.
func Validate(s Spec) error {
	if s.BaseWeightBps != 0 {
		return domain.ErrBaseWeightMustBeZero
	}
	if s.QuoteWeightBps != domain.MaxFeeShareBps {
		return domain.ErrQuoteWeightMustBe10000
	}
	if s.LowerTick > MaxLowerTick {
		return domain.ErrLowerTickTooHigh
	}
	if s.UpperTick < MinUpperTick {
		return domain.ErrUpperTickTooLow
	}
	switch s.FeeTierBps {
	case 100, 500, 3000, 10000:
	default:
		return domain.ErrInvalidFeeTier
	}
	return nil
}

// Create validates the spec and, when acceptable, asks the collaborator
// to create the position.
func Create(ctx context.Context, creator custody.PositionCreator, s Spec) error {
	if err := Validate(s); err != nil {
		return err
	}
	return creator.CreatePosition(ctx, s.Position, s.LowerTick, s.UpperTick, s.FeeTierBps)
}
