package position

import (
	"context"
	"errors"
	"testing"

	"github.com/0xtarunkm/star-fee-distribution/internal/custody/stub"
	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
)

func validSpec() Spec {
	return Spec{
		Position:       "Position1111111111111111111111111",
		BaseWeightBps:  0,
		QuoteWeightBps: 10000,
		LowerTick:      -443636,
		UpperTick:      443636,
		FeeTierBps:     3000,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Spec)
		wantErr error
	}{
		{"valid", func(s *Spec) {}, nil},
		{"widest ticks", func(s *Spec) { s.LowerTick = -500000; s.UpperTick = 500000 }, nil},
		{"nonzero base weight", func(s *Spec) { s.BaseWeightBps = 1 }, domain.ErrBaseWeightMustBeZero},
		{"quote weight below full", func(s *Spec) { s.QuoteWeightBps = 9999 }, domain.ErrQuoteWeightMustBe10000},
		{"lower tick too high", func(s *Spec) { s.LowerTick = -443635 }, domain.ErrLowerTickTooHigh},
		{"upper tick too low", func(s *Spec) { s.UpperTick = 443635 }, domain.ErrUpperTickTooLow},
		{"unknown fee tier", func(s *Spec) { s.FeeTierBps = 2500 }, domain.ErrInvalidFeeTier},
		{"fee tier 100", func(s *Spec) { s.FeeTierBps = 100 }, nil},
		{"fee tier 10000", func(s *Spec) { s.FeeTierBps = 10000 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSpec()
			tt.mutate(&s)
			if err := Validate(s); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	creator := stub.NewPositionCreator()
	if err := Create(ctx, creator, validSpec()); err != nil {
		t.Fatalf("Create() = %v", err)
	}
	if len(creator.Created) != 1 {
		t.Fatalf("created %d positions, want 1", len(creator.Created))
	}

	bad := validSpec()
	bad.BaseWeightBps = 50
	if err := Create(ctx, creator, bad); !errors.Is(err, domain.ErrBaseWeightMustBeZero) {
		t.Fatalf("Create() = %v, want ErrBaseWeightMustBeZero", err)
	}
	if len(creator.Created) != 1 {
		t.Fatalf("rejected spec must not reach the creator")
	}
}
