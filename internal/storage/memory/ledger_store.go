package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage"
)

// LedgerStore is an in-memory implementation of storage.LedgerStore.
// A single mutex serializes transactions; mutations are staged per
// transaction and applied only when fn succeeds, giving the same
// all-or-nothing semantics as the SQL backend.
type LedgerStore struct {
	mu         sync.Mutex
	config     *domain.DistributionConfig
	depositors map[string]*domain.DepositorRecord
	vaultStats domain.VaultStats
	crankState domain.CrankState
}

// NewLedgerStore creates a new in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		depositors: make(map[string]*domain.DepositorRecord),
	}
}

// InTx runs fn against a staged view of the ledger and commits on success.
func (s *LedgerStore) InTx(_ context.Context, fn func(tx storage.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &ledgerTx{
		store:      s,
		depositors: make(map[string]*domain.DepositorRecord),
	}

	if err := fn(tx); err != nil {
		return err
	}

	tx.commit()
	return nil
}

// ledgerTx stages mutations until commit. Reads prefer staged values and
// fall back to the committed state, returning copies to prevent external
// mutation.
type ledgerTx struct {
	store *LedgerStore

	config     *domain.DistributionConfig
	depositors map[string]*domain.DepositorRecord
	vaultStats *domain.VaultStats
	crankState *domain.CrankState
}

var _ storage.LedgerTx = (*ledgerTx)(nil)

func (t *ledgerTx) commit() {
	if t.config != nil {
		cfg := *t.config
		t.store.config = &cfg
	}
	for investor, r := range t.depositors {
		rec := *r
		t.store.depositors[investor] = &rec
	}
	if t.vaultStats != nil {
		t.store.vaultStats = *t.vaultStats
	}
	if t.crankState != nil {
		t.store.crankState = *t.crankState
	}
}

func (t *ledgerTx) GetConfig(_ context.Context) (*domain.DistributionConfig, error) {
	src := t.config
	if src == nil {
		src = t.store.config
	}
	if src == nil {
		return nil, storage.ErrNotFound
	}
	cfg := *src
	return &cfg, nil
}

func (t *ledgerTx) InsertConfig(_ context.Context, c *domain.DistributionConfig) error {
	if c == nil {
		return storage.ErrInvalidInput
	}
	if t.config != nil || t.store.config != nil {
		return storage.ErrDuplicateKey
	}
	cfg := *c
	t.config = &cfg
	return nil
}

func (t *ledgerTx) GetDepositor(_ context.Context, investor string) (*domain.DepositorRecord, error) {
	if investor == "" {
		return nil, storage.ErrInvalidInput
	}
	src, ok := t.depositors[investor]
	if !ok {
		src, ok = t.store.depositors[investor]
	}
	if !ok {
		return nil, storage.ErrNotFound
	}
	rec := *src
	return &rec, nil
}

func (t *ledgerTx) PutDepositor(_ context.Context, r *domain.DepositorRecord) error {
	if r == nil || r.Investor == "" {
		return storage.ErrInvalidInput
	}
	rec := *r
	t.depositors[r.Investor] = &rec
	return nil
}

func (t *ledgerTx) ListDepositors(_ context.Context, after string, limit int) ([]*domain.DepositorRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	merged := make(map[string]*domain.DepositorRecord, len(t.store.depositors)+len(t.depositors))
	for investor, r := range t.store.depositors {
		merged[investor] = r
	}
	for investor, r := range t.depositors {
		merged[investor] = r
	}

	keys := make([]string, 0, len(merged))
	for investor := range merged {
		if investor > after {
			keys = append(keys, investor)
		}
	}
	sort.Strings(keys)

	if len(keys) > limit {
		keys = keys[:limit]
	}

	result := make([]*domain.DepositorRecord, 0, len(keys))
	for _, investor := range keys {
		rec := *merged[investor]
		result = append(result, &rec)
	}
	return result, nil
}

func (t *ledgerTx) GetVaultStats(_ context.Context) (*domain.VaultStats, error) {
	if t.vaultStats != nil {
		stats := *t.vaultStats
		return &stats, nil
	}
	stats := t.store.vaultStats
	return &stats, nil
}

func (t *ledgerTx) PutVaultStats(_ context.Context, s *domain.VaultStats) error {
	if s == nil {
		return storage.ErrInvalidInput
	}
	stats := *s
	t.vaultStats = &stats
	return nil
}

func (t *ledgerTx) GetCrankState(_ context.Context) (*domain.CrankState, error) {
	if t.crankState != nil {
		state := *t.crankState
		return &state, nil
	}
	state := t.store.crankState
	return &state, nil
}

func (t *ledgerTx) PutCrankState(_ context.Context, s *domain.CrankState) error {
	if s == nil {
		return storage.ErrInvalidInput
	}
	state := *s
	t.crankState = &state
	return nil
}

// Verify interface compliance at compile time.
var _ storage.LedgerStore = (*LedgerStore)(nil)
