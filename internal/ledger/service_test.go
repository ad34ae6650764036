package ledger

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/0xtarunkm/star-fee-distribution/internal/custody"
	"github.com/0xtarunkm/star-fee-distribution/internal/custody/stub"
	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
	"github.com/0xtarunkm/star-fee-distribution/internal/keys"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage/memory"
)

const investorA = "InvestorA111111111111111111111111"

type fixture struct {
	svc    *Service
	store  *memory.LedgerStore
	events *memory.EventStore
	vaults *stub.Vaults
	clock  *clockwork.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewLedgerStore()
	events := memory.NewEventStore()
	vaults := stub.NewVaults()
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))

	svc := NewService(store, events, vaults, clock, slog.New(slog.DiscardHandler))
	return &fixture{svc: svc, store: store, events: events, vaults: vaults, clock: clock}
}

func (f *fixture) fund(investor string, amount uint64) {
	f.vaults.Credit(investor, amount)
}

func TestDeposit_FirstDepositCreatesRecord(t *testing.T) {
	f := newFixture(t)
	f.fund(investorA, 100_000)
	ctx := context.Background()

	rec, err := f.svc.Deposit(ctx, investorA, 0, 50_000)
	if err != nil {
		t.Fatalf("Deposit() = %v", err)
	}
	if rec.CurrentUsdcBalance != 50_000 {
		t.Fatalf("CurrentUsdcBalance = %d, want 50000", rec.CurrentUsdcBalance)
	}
	if rec.DepositCount != 1 {
		t.Fatalf("DepositCount = %d, want 1", rec.DepositCount)
	}
	if rec.FirstDepositTimestamp != 1_700_000_000 {
		t.Fatalf("FirstDepositTimestamp = %d", rec.FirstDepositTimestamp)
	}

	stats, err := f.svc.QueryVaultStats(ctx)
	if err != nil {
		t.Fatalf("QueryVaultStats() = %v", err)
	}
	if stats.DepositorCount != 1 {
		t.Fatalf("DepositorCount = %d, want 1", stats.DepositorCount)
	}
	if stats.CurrentTotalUsdc != 50_000 {
		t.Fatalf("CurrentTotalUsdc = %d, want 50000", stats.CurrentTotalUsdc)
	}

	// Funds actually moved into custody.
	bal, _ := f.vaults.Balance(ctx, keys.DepositVaultAddress("usdc"))
	if bal != 50_000 {
		t.Fatalf("usdc vault = %d, want 50000", bal)
	}

	if len(f.events.Deposits) != 1 {
		t.Fatalf("deposit events = %d, want 1", len(f.events.Deposits))
	}
}

func TestDeposit_SecondDepositSameInvestor(t *testing.T) {
	f := newFixture(t)
	f.fund(investorA, 100_000)
	ctx := context.Background()

	if _, err := f.svc.Deposit(ctx, investorA, 0, 20_000); err != nil {
		t.Fatalf("Deposit() = %v", err)
	}
	f.clock.Advance(time.Hour)
	rec, err := f.svc.Deposit(ctx, investorA, 0, 30_000)
	if err != nil {
		t.Fatalf("Deposit() = %v", err)
	}

	if rec.DepositCount != 2 {
		t.Fatalf("DepositCount = %d, want 2", rec.DepositCount)
	}
	if rec.FirstDepositTimestamp != 1_700_000_000 {
		t.Fatalf("FirstDepositTimestamp moved: %d", rec.FirstDepositTimestamp)
	}
	if rec.LastActivityTimestamp != 1_700_003_600 {
		t.Fatalf("LastActivityTimestamp = %d", rec.LastActivityTimestamp)
	}

	stats, _ := f.svc.QueryVaultStats(ctx)
	if stats.DepositorCount != 1 {
		t.Fatalf("DepositorCount = %d, want 1 (no double count)", stats.DepositorCount)
	}
}

func TestDeposit_Bounds(t *testing.T) {
	f := newFixture(t)
	f.fund(investorA, domain.MaxUsdcDeposit*2)
	ctx := context.Background()

	tests := []struct {
		name string
		sol  uint64
		usdc uint64
		ok   bool
	}{
		{"both zero", 0, 0, false},
		{"usdc below min", 0, domain.MinUsdcDeposit - 1, false},
		{"usdc at min", 0, domain.MinUsdcDeposit, true},
		{"usdc above max", 0, domain.MaxUsdcDeposit + 1, false},
		{"sol below min", domain.MinSolDeposit - 1, 0, false},
		{"sol at min", domain.MinSolDeposit, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.fund(investorA, tt.sol)
			_, err := f.svc.Deposit(ctx, investorA, tt.sol, tt.usdc)
			if tt.ok && err != nil {
				t.Fatalf("Deposit() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, domain.ErrInvalidDepositAmount) {
				t.Fatalf("Deposit() = %v, want ErrInvalidDepositAmount", err)
			}
		})
	}
}

func TestDeposit_CustodyFailureAbortsLedger(t *testing.T) {
	f := newFixture(t)
	// Investor has no funds, so the custody transfer fails.
	ctx := context.Background()

	_, err := f.svc.Deposit(ctx, investorA, 0, 50_000)
	if err == nil {
		t.Fatal("Deposit() = nil, want custody failure")
	}

	stats, _ := f.svc.QueryVaultStats(ctx)
	if stats.DepositorCount != 0 || stats.CurrentTotalUsdc != 0 {
		t.Fatalf("ledger mutated despite custody failure: %+v", stats)
	}
	if len(f.events.Deposits) != 0 {
		t.Fatal("event emitted despite custody failure")
	}
}

func TestDeposit_SecondLegFailureRefundsFirst(t *testing.T) {
	f := newFixture(t)
	// Enough for the sol leg only: the usdc leg fails and the sol leg
	// must be refunded, leaving custody and ledger both untouched.
	f.fund(investorA, 1_000_000)
	ctx := context.Background()

	_, err := f.svc.Deposit(ctx, investorA, 1_000_000, 1_000_000)
	if err == nil {
		t.Fatal("Deposit() = nil, want custody failure")
	}

	bal, _ := f.vaults.Balance(ctx, investorA)
	if bal != 1_000_000 {
		t.Fatalf("investor balance = %d, want 1000000 (sol leg refunded)", bal)
	}
	solBal, _ := f.vaults.Balance(ctx, keys.DepositVaultAddress("sol"))
	if solBal != 0 {
		t.Fatalf("sol vault = %d, want 0", solBal)
	}

	if _, err := f.svc.QueryDepositor(ctx, investorA); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("QueryDepositor() = %v, want ErrNotFound", err)
	}
	stats, _ := f.svc.QueryVaultStats(ctx)
	if stats.DepositorCount != 0 || stats.CurrentTotalUsdc != 0 || stats.CurrentTotalSol != 0 {
		t.Fatalf("ledger mutated despite custody failure: %+v", stats)
	}
	if len(f.events.Deposits) != 0 {
		t.Fatal("event emitted despite custody failure")
	}
}

// denyFromVaults fails any transfer out of the named vault once armed.
type denyFromVaults struct {
	*stub.Vaults
	deny string
}

func (v *denyFromVaults) Transfer(ctx context.Context, vault, destination string, amount uint64) error {
	if v.deny != "" && vault == v.deny {
		return custody.ErrTransferFailed
	}
	return v.Vaults.Transfer(ctx, vault, destination, amount)
}

func TestWithdraw_SecondLegFailureRefundsFirst(t *testing.T) {
	store := memory.NewLedgerStore()
	events := memory.NewEventStore()
	vaults := &denyFromVaults{Vaults: stub.NewVaults()}
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	svc := NewService(store, events, vaults, clock, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	vaults.Credit(investorA, 1_100_000)
	if _, err := svc.Deposit(ctx, investorA, 1_000_000, 100_000); err != nil {
		t.Fatalf("Deposit() = %v", err)
	}

	// Arm the failure on the usdc vault: the sol leg pays out first and
	// must be clawed back when the usdc leg fails.
	vaults.deny = keys.DepositVaultAddress("usdc")

	_, err := svc.Withdraw(ctx, investorA, 1_000_000, 100_000)
	if !errors.Is(err, custody.ErrTransferFailed) {
		t.Fatalf("Withdraw() = %v, want ErrTransferFailed", err)
	}

	bal, _ := vaults.Balance(ctx, investorA)
	if bal != 0 {
		t.Fatalf("investor balance = %d, want 0 (sol leg clawed back)", bal)
	}
	solBal, _ := vaults.Balance(ctx, keys.DepositVaultAddress("sol"))
	if solBal != 1_000_000 {
		t.Fatalf("sol vault = %d, want 1000000", solBal)
	}

	view, err := svc.QueryDepositor(ctx, investorA)
	if err != nil {
		t.Fatalf("QueryDepositor() = %v", err)
	}
	if view.Record.CurrentSolBalance != 1_000_000 || view.Record.CurrentUsdcBalance != 100_000 {
		t.Fatalf("ledger mutated despite custody failure: %+v", view.Record)
	}
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	f.fund(investorA, 100_000)
	ctx := context.Background()

	if _, err := f.svc.Deposit(ctx, investorA, 0, 50_000); err != nil {
		t.Fatalf("Deposit() = %v", err)
	}

	rec, err := f.svc.Withdraw(ctx, investorA, 0, 20_000)
	if err != nil {
		t.Fatalf("Withdraw() = %v", err)
	}
	if rec.CurrentUsdcBalance != 30_000 {
		t.Fatalf("CurrentUsdcBalance = %d, want 30000", rec.CurrentUsdcBalance)
	}
	if rec.TotalUsdcWithdrawn != 20_000 {
		t.Fatalf("TotalUsdcWithdrawn = %d, want 20000", rec.TotalUsdcWithdrawn)
	}

	stats, _ := f.svc.QueryVaultStats(ctx)
	if stats.CurrentTotalUsdc != 30_000 {
		t.Fatalf("CurrentTotalUsdc = %d, want 30000", stats.CurrentTotalUsdc)
	}

	// Funds returned to the investor.
	bal, _ := f.vaults.Balance(ctx, investorA)
	if bal != 70_000 {
		t.Fatalf("investor balance = %d, want 70000", bal)
	}

	if len(f.events.Withdrawals) != 1 {
		t.Fatalf("withdrawal events = %d, want 1", len(f.events.Withdrawals))
	}
}

func TestWithdraw_ExceedsBalance(t *testing.T) {
	f := newFixture(t)
	f.fund(investorA, 100_000)
	ctx := context.Background()

	if _, err := f.svc.Deposit(ctx, investorA, 0, 50_000); err != nil {
		t.Fatalf("Deposit() = %v", err)
	}

	_, err := f.svc.Withdraw(ctx, investorA, 0, 60_000)
	if !errors.Is(err, domain.ErrInsufficientTokenBalance) {
		t.Fatalf("Withdraw() = %v, want ErrInsufficientTokenBalance", err)
	}

	// No partial mutation.
	view, err := f.svc.QueryDepositor(ctx, investorA)
	if err != nil {
		t.Fatalf("QueryDepositor() = %v", err)
	}
	if view.Record.CurrentUsdcBalance != 50_000 {
		t.Fatalf("CurrentUsdcBalance = %d, want 50000", view.Record.CurrentUsdcBalance)
	}
}

func TestWithdraw_UnknownInvestor(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Withdraw(context.Background(), investorA, 0, 50_000)
	if !errors.Is(err, domain.ErrInsufficientTokenBalance) {
		t.Fatalf("Withdraw() = %v, want ErrInsufficientTokenBalance", err)
	}
}

func TestWithdraw_BelowMinimum(t *testing.T) {
	f := newFixture(t)
	f.fund(investorA, 100_000)
	ctx := context.Background()

	if _, err := f.svc.Deposit(ctx, investorA, 0, 50_000); err != nil {
		t.Fatalf("Deposit() = %v", err)
	}
	_, err := f.svc.Withdraw(ctx, investorA, 0, domain.MinUsdcDeposit-1)
	if !errors.Is(err, domain.ErrInvalidDepositAmount) {
		t.Fatalf("Withdraw() = %v, want ErrInvalidDepositAmount", err)
	}
}

func TestQueryDepositor_ShareOfVault(t *testing.T) {
	f := newFixture(t)
	investorB := "InvestorB111111111111111111111111"
	f.fund(investorA, 100_000)
	f.fund(investorB, 400_000)
	ctx := context.Background()

	if _, err := f.svc.Deposit(ctx, investorA, 0, 100_000); err != nil {
		t.Fatalf("Deposit() = %v", err)
	}
	if _, err := f.svc.Deposit(ctx, investorB, 0, 400_000); err != nil {
		t.Fatalf("Deposit() = %v", err)
	}

	view, err := f.svc.QueryDepositor(ctx, investorA)
	if err != nil {
		t.Fatalf("QueryDepositor() = %v", err)
	}
	if view.ShareOfVaultBps != 2000 {
		t.Fatalf("ShareOfVaultBps = %d, want 2000", view.ShareOfVaultBps)
	}

	if _, err := f.svc.QueryDepositor(ctx, "Unknown111111111111111111111111"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("QueryDepositor(unknown) = %v, want ErrNotFound", err)
	}
}

func TestLedgerInvariant_StatsMirrorRecords(t *testing.T) {
	f := newFixture(t)
	investors := []string{investorA, "InvestorB111111111111111111111111", "InvestorC111111111111111111111111"}
	ctx := context.Background()

	for i, inv := range investors {
		f.fund(inv, 1_000_000)
		amount := uint64(10_000 * (i + 1))
		if _, err := f.svc.Deposit(ctx, inv, 0, amount); err != nil {
			t.Fatalf("Deposit(%s) = %v", inv, err)
		}
	}
	if _, err := f.svc.Withdraw(ctx, investors[1], 0, 5_000); err != nil {
		t.Fatalf("Withdraw() = %v", err)
	}

	var sum uint64
	for _, inv := range investors {
		view, err := f.svc.QueryDepositor(ctx, inv)
		if err != nil {
			t.Fatalf("QueryDepositor(%s) = %v", inv, err)
		}
		sum += view.Record.CurrentUsdcBalance
	}

	stats, _ := f.svc.QueryVaultStats(ctx)
	if stats.CurrentTotalUsdc != sum {
		t.Fatalf("CurrentTotalUsdc = %d, records sum to %d", stats.CurrentTotalUsdc, sum)
	}
}
