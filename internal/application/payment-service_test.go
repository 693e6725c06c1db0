package application

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/application/mocks"
	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/RaikyD/studio-booking-service/internal/gateway"
	"github.com/RaikyD/studio-booking-service/internal/metrics"
	"github.com/RaikyD/studio-booking-service/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var orderIDPattern = regexp.MustCompile(`^MAKA-\d{13}-\d{1,3}$`)

func validBooking() BookingRequest {
	return BookingRequest{
		CustomerName: "Ana Pérez",
		Email:        "ana@example.com",
		Phone:        "+56911112222",
		Gender:       "femenino",
		Comments:     "Rosa en el antebrazo",
		DepositLabel: "Tatuaje mediano",
		Price:        50000,
	}
}

func newPaymentService(t *testing.T, repo repository.OrderRepo, gw Gateway) *PaymentService {
	t.Helper()
	return NewPaymentService(repo, gw, PaymentConfig{
		OrderPrefix:   "MAKA",
		SubjectPrefix: "Maka Tatuajes",
		Currency:      "CLP",
	}, metrics.New(prometheus.NewRegistry()))
}

func TestPaymentService_CreatePayment(t *testing.T) {
	repo := repository.NewMemoryRepository()
	gw := mocks.NewMockGateway(t)

	var sent *domain.Order
	gw.EXPECT().CreatePayment(mock.Anything, mock.Anything).
		Run(func(_ context.Context, o *domain.Order) { sent = o }).
		Return(&gateway.Payment{RedirectURL: "https://flow.test/pay?token=tok-1", Token: "tok-1"}, nil)

	svc := newPaymentService(t, repo, gw)
	checkout, err := svc.CreatePayment(context.Background(), validBooking())

	require.NoError(t, err)
	assert.Regexp(t, orderIDPattern, checkout.OrderID)
	assert.Equal(t, "https://flow.test/pay?token=tok-1", checkout.RedirectURL)

	require.NotNil(t, sent)
	assert.Equal(t, checkout.OrderID, sent.OrderID)
	assert.Equal(t, "Maka Tatuajes - Tatuaje mediano", sent.Subject)
	assert.Equal(t, int64(50000), sent.Amount)

	stored, err := repo.GetByToken(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, checkout.OrderID, stored.OrderID)
	assert.Equal(t, domain.OrderStatusPending, stored.Status)
	assert.Equal(t, "Ana Pérez", stored.Customer.Name)
}

func TestPaymentService_CreatePayment_Validation(t *testing.T) {
	cases := map[string]func(*BookingRequest){
		"missing name":    func(r *BookingRequest) { r.CustomerName = " " },
		"missing deposit": func(r *BookingRequest) { r.DepositLabel = "" },
		"bad email":       func(r *BookingRequest) { r.Email = "not-an-email" },
		"zero price":      func(r *BookingRequest) { r.Price = 0 },
		"negative price":  func(r *BookingRequest) { r.Price = -10 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			gw := mocks.NewMockGateway(t)
			svc := newPaymentService(t, repository.NewMemoryRepository(), gw)

			req := validBooking()
			mutate(&req)
			_, err := svc.CreatePayment(context.Background(), req)

			assert.ErrorIs(t, err, domain.ErrValidation)
			gw.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
		})
	}
}

func TestPaymentService_CreatePayment_GatewayRejected(t *testing.T) {
	repo := repository.NewMemoryRepository()
	gw := mocks.NewMockGateway(t)

	var sent *domain.Order
	gw.EXPECT().CreatePayment(mock.Anything, mock.Anything).
		Run(func(_ context.Context, o *domain.Order) { sent = o }).
		Return(nil, domain.ErrGatewayRejected)

	svc := newPaymentService(t, repo, gw)
	_, err := svc.CreatePayment(context.Background(), validBooking())

	assert.ErrorIs(t, err, domain.ErrGatewayRejected)
	require.NotNil(t, sent)

	stored, err := repo.GetByID(context.Background(), sent.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusFailed, stored.Status)
	assert.Contains(t, stored.FailureReason, "gateway")
}

// ctxRepo refuses transitions on a done context, as the Postgres store does.
type ctxRepo struct {
	*repository.MemoryRepository
}

func (r ctxRepo) Transition(ctx context.Context, orderID string, t domain.Transition) (*domain.Order, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	return r.MemoryRepository.Transition(ctx, orderID, t)
}

func TestPaymentService_CreatePayment_GatewayTimeoutStillFails(t *testing.T) {
	repo := repository.NewMemoryRepository()
	gw := mocks.NewMockGateway(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var sent *domain.Order
	gw.EXPECT().CreatePayment(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, o *domain.Order) (*gateway.Payment, error) {
			sent = o
			cancel()
			return nil, fmt.Errorf("%w: %w", domain.ErrGatewayUnavailable, context.DeadlineExceeded)
		})

	svc := newPaymentService(t, ctxRepo{repo}, gw)
	_, err := svc.CreatePayment(ctx, validBooking())

	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	require.NotNil(t, sent)

	stored, err := repo.GetByID(context.Background(), sent.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusFailed, stored.Status)
}

func TestPaymentService_CreatePayment_OrderCreatedBeforeGatewayCall(t *testing.T) {
	repo := repository.NewMemoryRepository()
	gw := mocks.NewMockGateway(t)

	gw.EXPECT().CreatePayment(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, o *domain.Order) (*gateway.Payment, error) {
			stored, err := repo.GetByID(ctx, o.OrderID)
			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusCreated, stored.Status)
			return &gateway.Payment{RedirectURL: "https://flow.test/pay?token=t", Token: "t"}, nil
		})

	svc := newPaymentService(t, repo, gw)
	_, err := svc.CreatePayment(context.Background(), validBooking())
	require.NoError(t, err)
}

func TestPaymentService_GetOrder(t *testing.T) {
	svc := newPaymentService(t, repository.NewMemoryRepository(), mocks.NewMockGateway(t))

	_, err := svc.GetOrder(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.GetOrder(context.Background(), "MAKA-1-1")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
