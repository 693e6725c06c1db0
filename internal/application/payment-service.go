package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/RaikyD/studio-booking-service/internal/logger"
	"github.com/RaikyD/studio-booking-service/internal/metrics"
	"github.com/RaikyD/studio-booking-service/internal/repository"
)

const (
	orderIDAttempts = 3
	failTimeout     = 5 * time.Second
)

type PaymentConfig struct {
	OrderPrefix   string
	SubjectPrefix string
	Currency      string
}

// BookingRequest is the customer form submitted from the booking page.
type BookingRequest struct {
	CustomerName string
	Email        string
	Phone        string
	Gender       string
	Comments     string
	DepositLabel string
	Price        int64
}

type Checkout struct {
	OrderID     string
	RedirectURL string
}

type PaymentService struct {
	repo    repository.OrderRepo
	gw      Gateway
	cfg     PaymentConfig
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewPaymentService(repo repository.OrderRepo, gw Gateway, cfg PaymentConfig, m *metrics.Metrics) *PaymentService {
	if cfg.OrderPrefix == "" {
		cfg.OrderPrefix = "MAKA"
	}
	if cfg.Currency == "" {
		cfg.Currency = "CLP"
	}
	return &PaymentService{
		repo:    repo,
		gw:      gw,
		cfg:     cfg,
		metrics: m,
		now:     time.Now,
	}
}

func (r BookingRequest) validate() error {
	required := map[string]string{
		"customerName": r.CustomerName,
		"email":        r.Email,
		"phone":        r.Phone,
		"gender":       r.Gender,
		"comments":     r.Comments,
		"depositLabel": r.DepositLabel,
	}
	var missing []string
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%w: missing fields: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if r.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	return nil
}

// CreatePayment stores the order, opens a gateway payment for it and records
// the gateway token. A gateway failure leaves the order FAILED.
func (s *PaymentService) CreatePayment(ctx context.Context, req BookingRequest) (*Checkout, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	o, err := s.createOrder(ctx, req)
	if err != nil {
		s.metrics.PaymentCreated(false)
		return nil, err
	}

	p, err := s.gw.CreatePayment(ctx, o)
	if err != nil {
		s.metrics.PaymentCreated(false)
		logger.Error("gateway create payment failed", "order_id", o.OrderID, "err", err)
		s.fail(ctx, o.OrderID, "gateway: "+err.Error())
		return nil, fmt.Errorf("create payment: %w", err)
	}

	if err := s.repo.AttachToken(ctx, o.OrderID, p.Token); err != nil {
		s.metrics.PaymentCreated(false)
		logger.Error("attach token failed", "order_id", o.OrderID, "token", logger.Mask(p.Token), "err", err)
		s.fail(ctx, o.OrderID, "attach token")
		return nil, fmt.Errorf("attach token: %w", err)
	}

	s.metrics.PaymentCreated(true)
	s.metrics.Transition(string(domain.OrderStatusPending))
	logger.Info("payment created", "order_id", o.OrderID, "amount", o.Amount, "token", logger.Mask(p.Token))

	return &Checkout{OrderID: o.OrderID, RedirectURL: p.RedirectURL}, nil
}

func (s *PaymentService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, fmt.Errorf("%w: order id is empty", domain.ErrValidation)
	}
	return s.repo.GetByID(ctx, orderID)
}

func (s *PaymentService) createOrder(ctx context.Context, req BookingRequest) (*domain.Order, error) {
	subject := req.DepositLabel
	if s.cfg.SubjectPrefix != "" {
		subject = s.cfg.SubjectPrefix + " - " + req.DepositLabel
	}

	now := s.now().UTC()
	o := &domain.Order{
		Amount:   req.Price,
		Currency: s.cfg.Currency,
		Subject:  subject,
		Customer: domain.Customer{
			Name:         strings.TrimSpace(req.CustomerName),
			Email:        strings.TrimSpace(req.Email),
			Phone:        strings.TrimSpace(req.Phone),
			Gender:       req.Gender,
			Comments:     req.Comments,
			DepositLabel: req.DepositLabel,
		},
		Status:    domain.OrderStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for i := 0; i < orderIDAttempts; i++ {
		o.OrderID = s.newOrderID()
		err := s.repo.Create(ctx, o)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, domain.ErrOrderAlreadyExists) {
			return nil, fmt.Errorf("create order: %w", err)
		}
		logger.Warn("order id collision, regenerating", "order_id", o.OrderID)
	}
	return nil, fmt.Errorf("create order: %w", domain.ErrOrderAlreadyExists)
}

// newOrderID returns PREFIX-<unix millis>-<0..999>.
func (s *PaymentService) newOrderID() string {
	return fmt.Sprintf("%s-%d-%d", s.cfg.OrderPrefix, s.now().UnixMilli(), rand.IntN(1000))
}

// fail records FAILED even when ctx is already done, which is the usual case
// after a gateway timeout.
func (s *PaymentService) fail(ctx context.Context, orderID, reason string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failTimeout)
	defer cancel()

	_, applied, err := s.repo.Transition(ctx, orderID, domain.Transition{
		To:            domain.OrderStatusFailed,
		FailureReason: reason,
	})
	if err != nil {
		logger.Error("mark order failed", "order_id", orderID, "err", err)
		return
	}
	if applied {
		s.metrics.Transition(string(domain.OrderStatusFailed))
	}
}
