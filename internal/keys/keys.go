// Package keys derives the deterministic addresses of the distribution
// program's records and vaults. Addresses are program-derived: seeds plus a
// bump are hashed and the first bump producing an off-curve point wins, so
// every address is stable across processes and has no corresponding private
// key.
package keys

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Namespace seeds. These match the on-chain program's PDA seeds.
const (
	SeedFeeCollector       = "fee_collector"
	SeedFeeVault           = "fee_vault"
	SeedDepositVault       = "deposit_vault"
	SeedInvestorRecord     = "investor_record"
	SeedCrankState         = "crank_state"
	SeedDistributionConfig = "distribution_config"
)

// ProgramID identifies the fee distribution authority domain. All derived
// addresses are scoped to it.
const ProgramID = "FAAk54pcwJFvHD76YaB5sZzqXCEhUCVpP3cBvggKofuS"

// Derive computes a program-derived address for the given seeds.
// Returns the base58 address and the bump that produced it.
func Derive(seeds ...[]byte) (string, uint8, error) {
	programID, err := base58.Decode(ProgramID)
	if err != nil {
		return "", 0, fmt.Errorf("decode program id: %w", err)
	}

	for bump := uint8(255); bump > 0; bump-- {
		data := make([]byte, 0, 128)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, programID...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:]), bump, nil
		}
	}

	return "", 0, fmt.Errorf("no off-curve address for seeds")
}

// isOnCurve reports whether a 32-byte point decodes on the ed25519 curve.
func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// mustDerive panics on derivation failure; used only for fixed-seed
// singletons whose derivation cannot fail at runtime.
func mustDerive(seeds ...[]byte) string {
	addr, _, err := Derive(seeds...)
	if err != nil {
		panic(err)
	}
	return addr
}

// DistributionConfigAddress returns the singleton config address.
func DistributionConfigAddress() string {
	return mustDerive([]byte(SeedDistributionConfig))
}

// CrankStateAddress returns the singleton crank state address.
func CrankStateAddress() string {
	return mustDerive([]byte(SeedCrankState))
}

// FeeCollectorAddress returns the program authority address that owns the
// fee and deposit vaults.
func FeeCollectorAddress() string {
	return mustDerive([]byte(SeedFeeCollector))
}

// FeeVaultAddress returns the fee vault address for a token mint.
func FeeVaultAddress(mint string) string {
	return mustDerive([]byte(SeedFeeVault), []byte(mint))
}

// DepositVaultAddress returns the deposit vault address for an asset tag
// (a mint address, or "sol" for the native vault).
func DepositVaultAddress(asset string) string {
	return mustDerive([]byte(SeedDepositVault), []byte(asset))
}

// VaultStatsAddress returns the singleton vault statistics address.
func VaultStatsAddress() string {
	return mustDerive([]byte(SeedDepositVault), []byte("stats"))
}

// InvestorRecordAddress returns the depositor record address for an investor.
func InvestorRecordAddress(investor string) string {
	return mustDerive([]byte(SeedInvestorRecord), []byte(investor))
}

// ValidAddress reports whether s decodes as a 32-byte base58 value.
func ValidAddress(s string) bool {
	raw, err := base58.Decode(s)
	return err == nil && len(raw) == 32
}
