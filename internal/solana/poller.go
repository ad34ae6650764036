package solana

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/0xtarunkm/star-fee-distribution/internal/custody"
	"github.com/0xtarunkm/star-fee-distribution/internal/observability"
)

// DefaultPollInterval is how often the vault poller reads balances when
// the caller does not override it.
const DefaultPollInterval = 30 * time.Second

// VaultPoller reads the vault token account balances over JSON-RPC on a
// fixed cadence and mirrors them into the vault gauges. It covers the
// websocket monitor's gaps: a missed notification is repaired on the next
// poll, and deployments without a websocket endpoint still get balances.
type VaultPoller struct {
	reader   custody.Vaults
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewVaultPoller creates a poller over reader. A zero interval falls
// back to DefaultPollInterval.
func NewVaultPoller(reader custody.Vaults, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *VaultPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &VaultPoller{reader: reader, interval: interval, clock: clock, logger: logger}
}

// Run polls immediately and then on every tick until ctx is cancelled.
func (p *VaultPoller) Run(ctx context.Context, baseVault, quoteVault string) {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx, baseVault, quoteVault)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			p.poll(ctx, baseVault, quoteVault)
		}
	}
}

func (p *VaultPoller) poll(ctx context.Context, baseVault, quoteVault string) {
	base, err := p.reader.Balance(ctx, baseVault)
	if err != nil {
		p.logger.Warn("vault poll failed", "side", "base", "vault", baseVault, "error", err)
		return
	}
	quote, err := p.reader.Balance(ctx, quoteVault)
	if err != nil {
		p.logger.Warn("vault poll failed", "side", "quote", "vault", quoteVault, "error", err)
		return
	}

	observability.UpdateVaultGauges(base, quote)
	p.logger.Debug("vault balances polled", "base", base, "quote", quote)
}
