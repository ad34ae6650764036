package memory

import (
	"context"
	"sync"

	"github.com/0xtarunkm/star-fee-distribution/internal/domain"
	"github.com/0xtarunkm/star-fee-distribution/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
// Useful for tests and local runs without ClickHouse.
type EventStore struct {
	mu sync.Mutex

	Deposits        []*domain.DepositEvent
	Withdrawals     []*domain.WithdrawalEvent
	FeesClaimed     []*domain.FeesClaimedEvent
	PayoutPages     []*domain.PayoutPageEvent
	InvestorPayouts []*domain.InvestorPayoutEvent
	DaysClosed      []*domain.DayClosedEvent
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) AppendDeposit(_ context.Context, e *domain.DepositEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.Deposits = append(s.Deposits, &cp)
	return nil
}

func (s *EventStore) AppendWithdrawal(_ context.Context, e *domain.WithdrawalEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.Withdrawals = append(s.Withdrawals, &cp)
	return nil
}

func (s *EventStore) AppendFeesClaimed(_ context.Context, e *domain.FeesClaimedEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.FeesClaimed = append(s.FeesClaimed, &cp)
	return nil
}

func (s *EventStore) AppendPayoutPage(_ context.Context, e *domain.PayoutPageEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.PayoutPages = append(s.PayoutPages, &cp)
	return nil
}

func (s *EventStore) AppendInvestorPayout(_ context.Context, e *domain.InvestorPayoutEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.InvestorPayouts = append(s.InvestorPayouts, &cp)
	return nil
}

func (s *EventStore) AppendDayClosed(_ context.Context, e *domain.DayClosedEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.DaysClosed = append(s.DaysClosed, &cp)
	return nil
}

// Verify interface compliance at compile time.
var _ storage.EventStore = (*EventStore)(nil)
