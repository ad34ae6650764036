package solana

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/0xtarunkm/star-fee-distribution/internal/observability"
)

// VaultMonitor watches the base and quote fee vault token accounts over
// websocket and mirrors their balances into the vault gauges.
type VaultMonitor struct {
	watcher AccountWatcher
	logger  *slog.Logger

	mu    sync.Mutex
	base  uint64
	quote uint64

	wg sync.WaitGroup
}

// NewVaultMonitor creates a monitor over watcher.
func NewVaultMonitor(watcher AccountWatcher, logger *slog.Logger) *VaultMonitor {
	return &VaultMonitor{watcher: watcher, logger: logger}
}

// Watch subscribes to both vault accounts and updates gauges until ctx is
// cancelled. Call Wait after cancelling to drain the consumer goroutines.
func (m *VaultMonitor) Watch(ctx context.Context, baseVault, quoteVault string) error {
	baseCh, err := m.watcher.SubscribeAccount(ctx, baseVault)
	if err != nil {
		return fmt.Errorf("subscribe base vault: %w", err)
	}

	quoteCh, err := m.watcher.SubscribeAccount(ctx, quoteVault)
	if err != nil {
		return fmt.Errorf("subscribe quote vault: %w", err)
	}

	m.wg.Add(2)
	go m.consume(ctx, "base", baseCh, func(amount uint64) {
		m.mu.Lock()
		m.base = amount
		observability.UpdateVaultGauges(m.base, m.quote)
		m.mu.Unlock()
	})
	go m.consume(ctx, "quote", quoteCh, func(amount uint64) {
		m.mu.Lock()
		m.quote = amount
		observability.UpdateVaultGauges(m.base, m.quote)
		m.mu.Unlock()
	})

	return nil
}

// Wait blocks until both consumer goroutines have exited.
func (m *VaultMonitor) Wait() {
	m.wg.Wait()
}

func (m *VaultMonitor) consume(ctx context.Context, side string, ch <-chan AccountNotification, update func(uint64)) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case notif, ok := <-ch:
			if !ok {
				return
			}

			amount, err := TokenAmountFromAccountData(notif.Data)
			if err != nil {
				m.logger.Warn("skipping vault update", "side", side, "slot", notif.Slot, "error", err)
				continue
			}

			update(amount)
			m.logger.Debug("vault balance update", "side", side, "slot", notif.Slot, "amount", amount)
		}
	}
}
