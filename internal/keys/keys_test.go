package keys

import "testing"

func TestDerive_Deterministic(t *testing.T) {
	a1, bump1, err := Derive([]byte(SeedInvestorRecord), []byte("investor-a"))
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	a2, bump2, err := Derive([]byte(SeedInvestorRecord), []byte("investor-a"))
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if a1 != a2 || bump1 != bump2 {
		t.Errorf("Derivation not deterministic: %s/%d vs %s/%d", a1, bump1, a2, bump2)
	}
}

func TestDerive_DistinctSeeds(t *testing.T) {
	a, _, err := Derive([]byte(SeedInvestorRecord), []byte("investor-a"))
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	b, _, err := Derive([]byte(SeedInvestorRecord), []byte("investor-b"))
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if a == b {
		t.Error("Distinct investors must derive distinct addresses")
	}
}

func TestDerive_OffCurve(t *testing.T) {
	addrs := []string{
		DistributionConfigAddress(),
		CrankStateAddress(),
		FeeCollectorAddress(),
		VaultStatsAddress(),
		FeeVaultAddress("So11111111111111111111111111111111111111112"),
		DepositVaultAddress("sol"),
	}

	seen := make(map[string]bool)
	for _, addr := range addrs {
		if !ValidAddress(addr) {
			t.Errorf("Derived address %q is not a valid 32-byte base58 value", addr)
		}
		if seen[addr] {
			t.Errorf("Address collision: %s", addr)
		}
		seen[addr] = true
	}
}

func TestValidAddress(t *testing.T) {
	if !ValidAddress(ProgramID) {
		t.Error("ProgramID should be a valid address")
	}
	if ValidAddress("not-base58-!!") {
		t.Error("Invalid characters should be rejected")
	}
	if ValidAddress("abc") {
		t.Error("Short values should be rejected")
	}
}
