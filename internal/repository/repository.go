package repository

import (
	"context"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
)

// OrderRepo is the order store. Transition and MarkNotified are
// compare-and-swap: of two concurrent callers exactly one sees applied=true.
type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	AttachToken(ctx context.Context, orderID, token string) error
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	GetByToken(ctx context.Context, token string) (*domain.Order, error)
	Transition(ctx context.Context, orderID string, t domain.Transition) (o *domain.Order, applied bool, err error)
	MarkNotified(ctx context.Context, orderID string, at time.Time) (bool, error)
}
