package solana

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/0xtarunkm/star-fee-distribution/internal/custody"
)

// ErrReadOnly is returned when a write operation is attempted against
// chain-backed custody. Transfers are signed on chain, not here.
var ErrReadOnly = errors.New("solana: custody is read-only")

// tokenAmountOffset is the byte offset of the u64 amount field in an
// SPL token account (mint 32 + owner 32).
const tokenAmountOffset = 64

// ReadOnlyVaults implements custody.Vaults balance reads against the
// cluster. Transfer always fails: the distributor observes on-chain
// vaults, it never moves value itself.
type ReadOnlyVaults struct {
	rpc RPCClient
}

var _ custody.Vaults = (*ReadOnlyVaults)(nil)

// NewReadOnlyVaults creates chain-backed custody reads over rpc.
func NewReadOnlyVaults(rpc RPCClient) *ReadOnlyVaults {
	return &ReadOnlyVaults{rpc: rpc}
}

// Balance returns the token balance of the vault token account.
func (v *ReadOnlyVaults) Balance(ctx context.Context, vault string) (uint64, error) {
	bal, err := v.rpc.GetTokenAccountBalance(ctx, vault)
	if err != nil {
		return 0, fmt.Errorf("get token balance %s: %w", vault, err)
	}
	if bal == nil {
		return 0, custody.ErrUnknownVault
	}
	return bal.Amount, nil
}

// Transfer always returns ErrReadOnly.
func (v *ReadOnlyVaults) Transfer(ctx context.Context, vault, destination string, amount uint64) error {
	return ErrReadOnly
}

// TokenAmountFromAccountData extracts the raw u64 balance from
// base64-encoded SPL token account data, as delivered by accountSubscribe
// and getAccountInfo.
func TokenAmountFromAccountData(data string) (uint64, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return 0, fmt.Errorf("decode account data: %w", err)
	}
	if len(raw) < tokenAmountOffset+8 {
		return 0, fmt.Errorf("account data too short for token account: %d bytes", len(raw))
	}
	return binary.LittleEndian.Uint64(raw[tokenAmountOffset : tokenAmountOffset+8]), nil
}
