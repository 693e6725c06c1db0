package repository

import (
	"context"
	"sync"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
)

// MemoryRepository keeps orders in process memory. Used when no database is
// configured and in tests.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*domain.Order
	byToken map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*domain.Order),
		byToken: make(map[string]string),
	}
}

func (m *MemoryRepository) Create(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[o.OrderID]; ok {
		return domain.ErrOrderAlreadyExists
	}
	cp := *o
	m.byID[o.OrderID] = &cp
	return nil
}

func (m *MemoryRepository) AttachToken(_ context.Context, orderID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.byID[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if owner, taken := m.byToken[token]; taken && owner != orderID {
		return domain.ErrTokenAlreadyAssigned
	}
	if o.Status != domain.OrderStatusCreated || o.GatewayToken != "" {
		return domain.ErrInvalidTransition
	}

	o.GatewayToken = token
	o.Status = domain.OrderStatusPending
	o.UpdatedAt = time.Now().UTC()
	m.byToken[token] = orderID
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.byID[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return clone(o), nil
}

func (m *MemoryRepository) GetByToken(_ context.Context, token string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byToken[token]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return clone(m.byID[id]), nil
}

func (m *MemoryRepository) Transition(_ context.Context, orderID string, t domain.Transition) (*domain.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.byID[orderID]
	if !ok {
		return nil, false, domain.ErrOrderNotFound
	}
	if !o.Status.CanTransition(t.To) {
		return clone(o), false, nil
	}

	o.Status = t.To
	if t.GatewayStatus > 0 {
		o.GatewayStatus = t.GatewayStatus
	}
	if t.PayerEmail != "" {
		o.PayerEmail = t.PayerEmail
	}
	o.FailureReason = t.FailureReason
	o.UpdatedAt = time.Now().UTC()
	return clone(o), true, nil
}

func (m *MemoryRepository) MarkNotified(_ context.Context, orderID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.byID[orderID]
	if !ok {
		return false, domain.ErrOrderNotFound
	}
	if o.Status != domain.OrderStatusConfirmed || o.NotifiedAt != nil {
		return false, nil
	}
	at = at.UTC()
	o.NotifiedAt = &at
	o.UpdatedAt = time.Now().UTC()
	return true, nil
}

func clone(o *domain.Order) *domain.Order {
	cp := *o
	if o.NotifiedAt != nil {
		t := *o.NotifiedAt
		cp.NotifiedAt = &t
	}
	return &cp
}
