package solana

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/0xtarunkm/star-fee-distribution/internal/custody"
)

type fakeRPC struct {
	balances map[string]uint64
	err      error
}

func (f *fakeRPC) GetTokenAccountBalance(ctx context.Context, account string) (*TokenBalance, error) {
	if f.err != nil {
		return nil, f.err
	}
	amount, ok := f.balances[account]
	if !ok {
		return nil, nil
	}
	return &TokenBalance{Amount: amount, Decimals: 6}, nil
}

func (f *fakeRPC) GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error) {
	return nil, nil
}

func (f *fakeRPC) GetBalance(ctx context.Context, pubkey string) (uint64, error) {
	return 0, nil
}

func (f *fakeRPC) GetSlot(ctx context.Context) (int64, error) {
	return 0, nil
}

func TestReadOnlyVaults_Balance(t *testing.T) {
	rpc := &fakeRPC{balances: map[string]uint64{"quoteVault": 50000}}
	vaults := NewReadOnlyVaults(rpc)

	bal, err := vaults.Balance(context.Background(), "quoteVault")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if bal != 50000 {
		t.Errorf("expected 50000, got %d", bal)
	}
}

func TestReadOnlyVaults_UnknownVault(t *testing.T) {
	vaults := NewReadOnlyVaults(&fakeRPC{balances: map[string]uint64{}})

	_, err := vaults.Balance(context.Background(), "missing")
	if !errors.Is(err, custody.ErrUnknownVault) {
		t.Fatalf("expected ErrUnknownVault, got %v", err)
	}
}

func TestReadOnlyVaults_TransferRejected(t *testing.T) {
	vaults := NewReadOnlyVaults(&fakeRPC{balances: map[string]uint64{"v": 1}})

	err := vaults.Transfer(context.Background(), "v", "dest", 1)
	if !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}

func TestTokenAmountFromAccountData(t *testing.T) {
	// SPL token account layout: mint(32) owner(32) amount(8) ...
	raw := make([]byte, 165)
	binary.LittleEndian.PutUint64(raw[64:72], 7_000_000)
	data := base64.StdEncoding.EncodeToString(raw)

	amount, err := TokenAmountFromAccountData(data)
	if err != nil {
		t.Fatalf("TokenAmountFromAccountData: %v", err)
	}
	if amount != 7_000_000 {
		t.Errorf("expected 7000000, got %d", amount)
	}
}

func TestTokenAmountFromAccountData_TooShort(t *testing.T) {
	data := base64.StdEncoding.EncodeToString(make([]byte, 32))

	if _, err := TokenAmountFromAccountData(data); err == nil {
		t.Fatal("expected error for truncated account data")
	}
}

func TestTokenAmountFromAccountData_BadBase64(t *testing.T) {
	if _, err := TokenAmountFromAccountData("not base64!!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}
