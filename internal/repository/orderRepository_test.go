package repository

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/RaikyD/studio-booking-service/internal/migrate"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPostgresRepo needs a disposable database in TEST_DB_STRING.
func newPostgresRepo(t *testing.T) *OrderRepository {
	t.Helper()
	dsn := os.Getenv("TEST_DB_STRING")
	if dsn == "" {
		t.Skip("TEST_DB_STRING not set")
	}

	ctx := context.Background()
	require.NoError(t, migrate.Up(ctx, dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewOrderRepository(pool)
}

func TestOrderRepository_Lifecycle(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()

	id := "TEST-" + uuid.NewString()
	token := "tok-" + uuid.NewString()
	require.NoError(t, repo.Create(ctx, newOrder(id)))
	assert.ErrorIs(t, repo.Create(ctx, newOrder(id)), domain.ErrOrderAlreadyExists)

	require.NoError(t, repo.AttachToken(ctx, id, token))
	assert.ErrorIs(t, repo.AttachToken(ctx, id, "other"), domain.ErrInvalidTransition)

	o, err := repo.GetByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, id, o.OrderID)
	assert.Equal(t, domain.OrderStatusPending, o.Status)
	assert.Equal(t, "Ana", o.Customer.Name)
	assert.Nil(t, o.NotifiedAt)

	o, applied, err := repo.Transition(ctx, id, domain.Transition{To: domain.OrderStatusConfirmed, GatewayStatus: 2, PayerEmail: "p@example.com"})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, domain.OrderStatusConfirmed, o.Status)
	assert.Equal(t, "p@example.com", o.PayerEmail)

	_, applied, err = repo.Transition(ctx, id, domain.Transition{To: domain.OrderStatusRejected})
	require.NoError(t, err)
	assert.False(t, applied)

	ok, err := repo.MarkNotified(ctx, id, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkNotified(ctx, id, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.GetByID(ctx, "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderRepository_TokenUnique(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()

	a, b := "TEST-"+uuid.NewString(), "TEST-"+uuid.NewString()
	token := "tok-" + uuid.NewString()
	require.NoError(t, repo.Create(ctx, newOrder(a)))
	require.NoError(t, repo.Create(ctx, newOrder(b)))

	require.NoError(t, repo.AttachToken(ctx, a, token))
	assert.ErrorIs(t, repo.AttachToken(ctx, b, token), domain.ErrTokenAlreadyAssigned)
}

func TestOrderRepository_ConcurrentTransition(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()

	id := "TEST-" + uuid.NewString()
	require.NoError(t, repo.Create(ctx, newOrder(id)))
	require.NoError(t, repo.AttachToken(ctx, id, "tok-"+uuid.NewString()))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, applied, err := repo.Transition(ctx, id, domain.Transition{To: domain.OrderStatusConfirmed, GatewayStatus: 2})
			if err == nil && applied {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}
