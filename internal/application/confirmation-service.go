package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/RaikyD/studio-booking-service/internal/gateway"
	"github.com/RaikyD/studio-booking-service/internal/logger"
	"github.com/RaikyD/studio-booking-service/internal/metrics"
	"github.com/RaikyD/studio-booking-service/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Outcome of processing one confirmation.
type Outcome string

const (
	OutcomeTransitioned Outcome = "transitioned"
	OutcomeDuplicate    Outcome = "duplicate"
	OutcomePending      Outcome = "pending"
)

const (
	// processTimeout bounds the shared work for one token once it has been
	// detached from the callers' contexts.
	processTimeout = 30 * time.Second
	notifyTimeout  = 20 * time.Second
)

type Confirmation struct {
	Outcome Outcome
	Order   *domain.Order
}

type ConfirmationService struct {
	repo     repository.OrderRepo
	gw       Gateway
	notifier Notifier
	events   EventPublisher
	locker   Locker
	metrics  *metrics.Metrics
	group    singleflight.Group
	now      func() time.Time

	processTimeout time.Duration
	notifyTimeout  time.Duration
}

// NewConfirmationService wires the callback state machine. events and locker
// may be nil.
func NewConfirmationService(
	repo repository.OrderRepo,
	gw Gateway,
	notifier Notifier,
	events EventPublisher,
	locker Locker,
	m *metrics.Metrics,
) *ConfirmationService {
	return &ConfirmationService{
		repo:     repo,
		gw:       gw,
		notifier: notifier,
		events:   events,
		locker:   locker,
		metrics:  m,
		now:      time.Now,

		processTimeout: processTimeout,
		notifyTimeout:  notifyTimeout,
	}
}

// Confirm handles a gateway callback. The callback payload is trusted only
// for the token: the status always comes from the gateway itself.
func (s *ConfirmationService) Confirm(ctx context.Context, token, sig string) (*Confirmation, error) {
	token = strings.TrimSpace(token)
	if token == "" || sig == "" {
		s.metrics.Callback(metrics.OutcomeBadRequest)
		return nil, fmt.Errorf("%w: token and signature are required", domain.ErrValidation)
	}

	if !s.gw.VerifyCallback(token, sig) {
		s.metrics.SignatureFailure()
		s.metrics.Callback(metrics.OutcomeUnauthorized)
		logger.Warn("callback signature mismatch", "token", logger.Mask(token))
		return nil, domain.ErrAuthentication
	}

	c, err := s.reconcile(ctx, token)
	s.metrics.Callback(callbackOutcome(c, err))
	return c, err
}

// Reconcile polls the gateway for token and applies the result, without a
// callback signature. Used when the customer returns from the gateway.
func (s *ConfirmationService) Reconcile(ctx context.Context, token string) (*Confirmation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", domain.ErrValidation)
	}
	return s.reconcile(ctx, token)
}

// reconcile coalesces concurrent work for the same token inside this process.
// The shared work runs detached from every caller: a caller that goes away
// gets its own context error while the transition and its emails complete.
func (s *ConfirmationService) reconcile(ctx context.Context, token string) (*Confirmation, error) {
	ch := s.group.DoChan(token, func() (any, error) {
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.processTimeout)
		defer cancel()
		return s.process(wctx, token)
	})

	select {
	case <-ctx.Done():
		logger.Warn("confirmation caller gone, processing continues", "token", logger.Mask(token), "err", ctx.Err())
		return nil, fmt.Errorf("reconcile: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logger.Debug("confirmation shared with concurrent caller", "token", logger.Mask(token))
		}
		return res.Val.(*Confirmation), nil
	}
}

func (s *ConfirmationService) process(ctx context.Context, token string) (*Confirmation, error) {
	o, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			logger.Warn("confirmation for unknown token", "token", logger.Mask(token))
			return nil, err
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	if o.Status.Terminal() {
		return s.duplicate(o), nil
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, "order:"+o.OrderID)
		if err != nil {
			return nil, fmt.Errorf("lock order %s: %w", o.OrderID, err)
		}
		defer release()
	}

	st, err := s.gw.GetStatus(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	t, ok := s.target(o, st)
	if !ok {
		logger.Info("payment still pending", "order_id", o.OrderID, "gateway_status", st.StatusCode)
		return &Confirmation{Outcome: OutcomePending, Order: o}, nil
	}

	updated, applied, err := s.repo.Transition(ctx, o.OrderID, t)
	if err != nil {
		return nil, fmt.Errorf("transition order: %w", err)
	}
	if !applied {
		return s.duplicate(updated), nil
	}

	s.metrics.Transition(string(updated.Status))
	logger.Info("order transitioned", "order_id", updated.OrderID, "status", updated.Status, "gateway_status", st.StatusCode)
	s.publish(ctx, eventType(updated.Status), updated)

	if updated.Status == domain.OrderStatusConfirmed {
		s.notify(ctx, updated)
	}
	return &Confirmation{Outcome: OutcomeTransitioned, Order: updated}, nil
}

// target maps the gateway status onto the next order status. ok is false
// while the payment is still pending on the gateway side.
func (s *ConfirmationService) target(o *domain.Order, st *gateway.Status) (domain.Transition, bool) {
	t := domain.Transition{GatewayStatus: st.StatusCode, PayerEmail: st.PayerEmail}

	switch st.StatusCode {
	case gateway.StatusPaid:
		switch {
		case st.Amount != o.Amount:
			logger.Error("paid amount does not match order",
				"order_id", o.OrderID, "expected", o.Amount, "got", st.Amount)
			t.To = domain.OrderStatusFailed
			t.FailureReason = "amount mismatch"
		case st.CommerceOrder != "" && st.CommerceOrder != o.OrderID:
			logger.Error("gateway order does not match token owner",
				"order_id", o.OrderID, "commerce_order", st.CommerceOrder)
			t.To = domain.OrderStatusFailed
			t.FailureReason = "order mismatch"
		default:
			t.To = domain.OrderStatusConfirmed
		}
	case gateway.StatusRejected, gateway.StatusCancelled:
		t.To = domain.OrderStatusRejected
	default:
		return t, false
	}
	return t, true
}

func (s *ConfirmationService) duplicate(o *domain.Order) *Confirmation {
	s.metrics.DuplicateCallback()
	logger.Info("duplicate confirmation", "order_id", o.OrderID, "status", o.Status)
	return &Confirmation{Outcome: OutcomeDuplicate, Order: o}
}

// notify dispatches the emails for a freshly confirmed order. The order stays
// CONFIRMED whatever happens here; a missed customer email is handed to the
// retry consumer.
func (s *ConfirmationService) notify(ctx context.Context, o *domain.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	res := s.notifier.Notify(ctx, o)
	if !res.OperatorSent {
		logger.Warn("operator notification not sent", "order_id", o.OrderID)
	}
	if !res.CustomerSent {
		s.publish(ctx, domain.EventNotificationFailed, o)
		return
	}

	at := s.now()
	if _, err := s.repo.MarkNotified(ctx, o.OrderID, at); err != nil {
		logger.Error("mark notified failed", "order_id", o.OrderID, "err", err)
		return
	}
	o.NotifiedAt = &at
}

// RetryNotification re-sends the customer confirmation for a CONFIRMED order
// that has not been notified yet. It is a no-op otherwise.
func (s *ConfirmationService) RetryNotification(ctx context.Context, orderID string) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}
	if o.Status != domain.OrderStatusConfirmed || o.NotifiedAt != nil {
		logger.Debug("notification retry skipped", "order_id", orderID, "status", o.Status)
		return nil
	}

	res := s.notifier.Notify(ctx, o)
	if !res.CustomerSent {
		return fmt.Errorf("%w: customer confirmation for %s", domain.ErrEmailFailed, orderID)
	}
	if _, err := s.repo.MarkNotified(ctx, orderID, s.now()); err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	logger.Info("notification retried", "order_id", orderID)
	return nil
}

func (s *ConfirmationService) publish(ctx context.Context, typ string, o *domain.Order) {
	if s.events == nil || typ == "" {
		return
	}
	e := domain.OrderEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		OrderID:    o.OrderID,
		Status:     o.Status,
		Amount:     o.Amount,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, e); err != nil {
		logger.Error("publish order event failed", "order_id", o.OrderID, "type", typ, "err", err)
	}
}

func eventType(st domain.OrderStatus) string {
	switch st {
	case domain.OrderStatusConfirmed:
		return domain.EventOrderConfirmed
	case domain.OrderStatusRejected:
		return domain.EventOrderRejected
	case domain.OrderStatusFailed:
		return domain.EventOrderFailed
	}
	return ""
}

func callbackOutcome(c *Confirmation, err error) string {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return metrics.OutcomeNotFound
	case err != nil:
		return metrics.OutcomeError
	case c.Outcome == OutcomeDuplicate:
		return metrics.OutcomeDuplicate
	case c.Outcome == OutcomePending:
		return metrics.OutcomePending
	}
	return metrics.OutcomeAcknowledged
}
