package solana

import "context"

// RPCClient defines the Solana HTTP RPC surface the distributor uses to
// observe the program vaults.
type RPCClient interface {
	// GetTokenAccountBalance returns the SPL token balance of a token
	// account. Returns nil if the account does not exist.
	GetTokenAccountBalance(ctx context.Context, account string) (*TokenBalance, error)

	// GetAccountInfo retrieves raw account info by public key.
	// Returns nil if account not found.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetBalance returns the lamport balance of an account.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetSlot retrieves the current slot.
	GetSlot(ctx context.Context) (int64, error)
}

// TokenBalance is a token account balance as reported by the cluster.
type TokenBalance struct {
	// Amount is the raw balance in base units.
	Amount uint64
	// Decimals of the underlying mint.
	Decimals uint8
	// UIAmountString is the cluster-formatted decimal string.
	UIAmountString string
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}
