package solana

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/0xtarunkm/star-fee-distribution/internal/observability"
)

func TestVaultPoller_UpdatesGauges(t *testing.T) {
	rpc := &fakeRPC{balances: map[string]uint64{"baseVault": 1200, "quoteVault": 340_000}}
	p := NewVaultPoller(NewReadOnlyVaults(rpc), time.Minute, clockwork.NewFakeClock(), slog.New(slog.DiscardHandler))

	p.poll(context.Background(), "baseVault", "quoteVault")

	if got := testutil.ToFloat64(observability.DefaultMetrics.BaseVaultBalance); got != 1200 {
		t.Errorf("base gauge = %v, want 1200", got)
	}
	if got := testutil.ToFloat64(observability.DefaultMetrics.QuoteVaultBalance); got != 340_000 {
		t.Errorf("quote gauge = %v, want 340000", got)
	}
}

func TestVaultPoller_ReadFailureKeepsGauges(t *testing.T) {
	rpc := &fakeRPC{balances: map[string]uint64{"baseVault": 500, "quoteVault": 600}}
	p := NewVaultPoller(NewReadOnlyVaults(rpc), time.Minute, clockwork.NewFakeClock(), slog.New(slog.DiscardHandler))
	ctx := context.Background()

	p.poll(ctx, "baseVault", "quoteVault")

	// A failed read must not zero or partially update the gauges.
	rpc.err = errors.New("rpc unavailable")
	rpc.balances["baseVault"] = 9999
	p.poll(ctx, "baseVault", "quoteVault")

	if got := testutil.ToFloat64(observability.DefaultMetrics.BaseVaultBalance); got != 500 {
		t.Errorf("base gauge = %v, want 500", got)
	}
	if got := testutil.ToFloat64(observability.DefaultMetrics.QuoteVaultBalance); got != 600 {
		t.Errorf("quote gauge = %v, want 600", got)
	}
}

func TestVaultPoller_RunStopsOnCancel(t *testing.T) {
	rpc := &fakeRPC{balances: map[string]uint64{"baseVault": 1, "quoteVault": 2}}
	clock := clockwork.NewFakeClock()
	p := NewVaultPoller(NewReadOnlyVaults(rpc), time.Minute, clock, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx, "baseVault", "quoteVault")
	}()

	// Wait for the initial poll to finish and Run to park on the ticker.
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	if err := clock.BlockUntilContext(waitCtx, 1); err != nil {
		t.Fatalf("poller never reached the ticker: %v", err)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
