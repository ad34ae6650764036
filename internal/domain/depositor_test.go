package domain

import (
	"errors"
	"testing"
)

func TestDepositorRecord_ApplyDeposit(t *testing.T) {
	r := NewDepositorRecord("inv1", 1000)

	if err := r.ApplyDeposit(2_000_000, 5_000, 2000); err != nil {
		t.Fatalf("ApplyDeposit failed: %v", err)
	}

	if r.CurrentSolBalance != 2_000_000 || r.CurrentUsdcBalance != 5_000 {
		t.Errorf("Balances = %d/%d, want 2000000/5000", r.CurrentSolBalance, r.CurrentUsdcBalance)
	}
	if r.DepositCount != 1 {
		t.Errorf("DepositCount = %d, want 1", r.DepositCount)
	}
	if r.FirstDepositTimestamp != 2000 {
		t.Errorf("FirstDepositTimestamp = %d, want 2000", r.FirstDepositTimestamp)
	}

	// Second deposit must not move the first-deposit timestamp.
	if err := r.ApplyDeposit(0, 1_000, 3000); err != nil {
		t.Fatalf("Second ApplyDeposit failed: %v", err)
	}
	if r.FirstDepositTimestamp != 2000 {
		t.Errorf("FirstDepositTimestamp moved to %d", r.FirstDepositTimestamp)
	}
	if r.LastActivityTimestamp != 3000 {
		t.Errorf("LastActivityTimestamp = %d, want 3000", r.LastActivityTimestamp)
	}
}

func TestDepositorRecord_BalanceInvariant(t *testing.T) {
	r := NewDepositorRecord("inv1", 0)

	deposits := []uint64{5_000, 20_000, 1_000}
	for _, amt := range deposits {
		if err := r.ApplyDeposit(0, amt, 100); err != nil {
			t.Fatalf("ApplyDeposit(%d) failed: %v", amt, err)
		}
	}
	if err := r.ApplyWithdrawal(0, 6_000, 200); err != nil {
		t.Fatalf("ApplyWithdrawal failed: %v", err)
	}

	want := r.TotalUsdcDeposited - r.TotalUsdcWithdrawn
	if r.CurrentUsdcBalance != want {
		t.Errorf("CurrentUsdcBalance = %d, want deposited-withdrawn = %d", r.CurrentUsdcBalance, want)
	}
}

func TestDepositorRecord_WithdrawalExceedsBalance(t *testing.T) {
	r := NewDepositorRecord("inv1", 0)
	if err := r.ApplyDeposit(0, 5_000, 100); err != nil {
		t.Fatalf("ApplyDeposit failed: %v", err)
	}

	err := r.ApplyWithdrawal(0, 5_001, 200)
	if !errors.Is(err, ErrInsufficientTokenBalance) {
		t.Errorf("Expected ErrInsufficientTokenBalance, got %v", err)
	}

	// No partial mutation on failure.
	if r.CurrentUsdcBalance != 5_000 || r.WithdrawalCount != 0 {
		t.Errorf("Record mutated on failed withdrawal: balance=%d count=%d",
			r.CurrentUsdcBalance, r.WithdrawalCount)
	}
}

func TestDepositorRecord_ShareOfVaultBps(t *testing.T) {
	r := NewDepositorRecord("inv1", 0)
	if err := r.ApplyDeposit(0, 200_000, 100); err != nil {
		t.Fatalf("ApplyDeposit failed: %v", err)
	}

	share, err := r.ShareOfVaultBps(500_000)
	if err != nil {
		t.Fatalf("ShareOfVaultBps failed: %v", err)
	}
	if share != 4000 {
		t.Errorf("Share = %d bps, want 4000", share)
	}

	share, err = r.ShareOfVaultBps(0)
	if err != nil || share != 0 {
		t.Errorf("Empty vault share = %d, %v, want 0, nil", share, err)
	}
}

func TestVaultStats_MirrorsRecords(t *testing.T) {
	stats := &VaultStats{}
	records := []*DepositorRecord{
		NewDepositorRecord("a", 0),
		NewDepositorRecord("b", 0),
		NewDepositorRecord("c", 0),
	}

	amounts := []uint64{200_000, 300_000, 50_000}
	for i, r := range records {
		if err := r.ApplyDeposit(0, amounts[i], 100); err != nil {
			t.Fatalf("ApplyDeposit failed: %v", err)
		}
		if err := stats.ApplyDeposit(0, amounts[i], 100); err != nil {
			t.Fatalf("stats.ApplyDeposit failed: %v", err)
		}
	}
	if err := records[2].ApplyWithdrawal(0, 50_000, 200); err != nil {
		t.Fatalf("ApplyWithdrawal failed: %v", err)
	}
	if err := stats.ApplyWithdrawal(0, 50_000, 200); err != nil {
		t.Fatalf("stats.ApplyWithdrawal failed: %v", err)
	}

	var sum uint64
	for _, r := range records {
		sum += r.CurrentUsdcBalance
	}
	if stats.CurrentTotalUsdc != sum {
		t.Errorf("CurrentTotalUsdc = %d, want sum of balances %d", stats.CurrentTotalUsdc, sum)
	}
}
