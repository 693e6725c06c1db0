package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(id string) *domain.Order {
	now := time.Now().UTC()
	return &domain.Order{
		OrderID:   id,
		Amount:    50000,
		Currency:  "CLP",
		Subject:   "Maka Tatuajes - Abono",
		Customer:  domain.Customer{Name: "Ana", Email: "ana@example.com"},
		Status:    domain.OrderStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryRepository_CreateAndAttach(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, repo.Create(ctx, newOrder("o1")))
	assert.ErrorIs(t, repo.Create(ctx, newOrder("o1")), domain.ErrOrderAlreadyExists)

	_, err := repo.GetByToken(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	require.NoError(t, repo.AttachToken(ctx, "o1", "tok"))

	o, err := repo.GetByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.OrderID)
	assert.Equal(t, domain.OrderStatusPending, o.Status)

	assert.ErrorIs(t, repo.AttachToken(ctx, "o1", "tok2"), domain.ErrInvalidTransition)
	assert.ErrorIs(t, repo.AttachToken(ctx, "missing", "tok3"), domain.ErrOrderNotFound)
}

func TestMemoryRepository_TokenNeverReassigned(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Create(ctx, newOrder("o1")))
	require.NoError(t, repo.Create(ctx, newOrder("o2")))

	require.NoError(t, repo.AttachToken(ctx, "o1", "tok"))
	assert.ErrorIs(t, repo.AttachToken(ctx, "o2", "tok"), domain.ErrTokenAlreadyAssigned)

	o, err := repo.GetByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.OrderID)
}

func TestMemoryRepository_TransitionMonotonic(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Create(ctx, newOrder("o1")))
	require.NoError(t, repo.AttachToken(ctx, "o1", "tok"))

	o, applied, err := repo.Transition(ctx, "o1", domain.Transition{
		To: domain.OrderStatusConfirmed, GatewayStatus: 2, PayerEmail: "payer@example.com",
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, domain.OrderStatusConfirmed, o.Status)
	assert.Equal(t, 2, o.GatewayStatus)
	assert.Equal(t, "payer@example.com", o.PayerEmail)

	o, applied, err = repo.Transition(ctx, "o1", domain.Transition{To: domain.OrderStatusFailed, FailureReason: "x"})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, domain.OrderStatusConfirmed, o.Status)

	_, _, err = repo.Transition(ctx, "missing", domain.Transition{To: domain.OrderStatusConfirmed})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestMemoryRepository_MarkNotifiedOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Create(ctx, newOrder("o1")))

	ok, err := repo.MarkNotified(ctx, "o1", time.Now())
	require.NoError(t, err)
	assert.False(t, ok, "only confirmed orders are notified")

	_, _, err = repo.Transition(ctx, "o1", domain.Transition{To: domain.OrderStatusConfirmed})
	require.NoError(t, err)

	ok, err = repo.MarkNotified(ctx, "o1", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkNotified(ctx, "o1", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	o, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.NotNil(t, o.NotifiedAt)
}

func TestMemoryRepository_ConcurrentTransition(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Create(ctx, newOrder("o1")))
	require.NoError(t, repo.AttachToken(ctx, "o1", "tok"))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, applied, err := repo.Transition(ctx, "o1", domain.Transition{To: domain.OrderStatusConfirmed})
			if err == nil && applied {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Create(ctx, newOrder("o1")))

	o, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	o.Status = domain.OrderStatusConfirmed

	again, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCreated, again.Status)
}
