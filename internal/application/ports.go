package application

import (
	"context"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/RaikyD/studio-booking-service/internal/gateway"
	"github.com/RaikyD/studio-booking-service/internal/notification"
)

type Gateway interface {
	CreatePayment(ctx context.Context, o *domain.Order) (*gateway.Payment, error)
	GetStatus(ctx context.Context, token string) (*gateway.Status, error)
	VerifyCallback(token, sig string) bool
}

type Notifier interface {
	Notify(ctx context.Context, o *domain.Order) notification.Result
}

type EventPublisher interface {
	Publish(ctx context.Context, e domain.OrderEvent) error
}

// Locker serializes work on one order across instances. Acquire returns
// domain.ErrOrderBusy when another holder owns the key.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type Calendar interface {
	AvailableSlots(ctx context.Context, date string) ([]domain.TimeSlot, error)
	CreateAppointment(ctx context.Context, a domain.Appointment) (string, error)
}

type OperatorNotifier interface {
	Appointment(ctx context.Context, a domain.Appointment) error
	Newsletter(ctx context.Context, s domain.Subscriber) error
}
