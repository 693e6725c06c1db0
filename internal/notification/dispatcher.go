package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/RaikyD/studio-booking-service/internal/logger"
	"github.com/RaikyD/studio-booking-service/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	recipientCustomer = "customer"
	recipientOperator = "operator"
)

// Result reports each message independently.
type Result struct {
	CustomerSent bool
	OperatorSent bool
}

type Dispatcher struct {
	sender   Sender
	from     string
	operator string
	metrics  *metrics.Metrics
}

func NewDispatcher(sender Sender, from, operator string, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		sender:   sender,
		from:     from,
		operator: operator,
		metrics:  m,
	}
}

// Notify sends the customer confirmation and the operator notice
// concurrently. Failures are logged and reported in Result, never returned.
func (d *Dispatcher) Notify(ctx context.Context, o *domain.Order) Result {
	var res Result
	var g errgroup.Group

	g.Go(func() error {
		res.CustomerSent = d.send(ctx, recipientCustomer, o, func() (Message, error) {
			html, err := render(customerTmpl, o)
			return Message{
				From:    d.from,
				To:      []string{o.Customer.Email},
				Subject: "Pago confirmado - Maka Tatuajes",
				HTML:    html,
			}, err
		})
		return nil
	})
	g.Go(func() error {
		res.OperatorSent = d.send(ctx, recipientOperator, o, func() (Message, error) {
			html, err := render(operatorTmpl, o)
			return Message{
				From:    d.from,
				To:      []string{d.operator},
				Subject: fmt.Sprintf("Pago confirmado %s - %s", o.OrderID, o.Customer.Name),
				HTML:    html,
				ReplyTo: o.Customer.Email,
			}, err
		})
		return nil
	})
	_ = g.Wait()

	return res
}

func (d *Dispatcher) send(ctx context.Context, recipient string, o *domain.Order, build func() (Message, error)) bool {
	msg, err := build()
	if err == nil && len(msg.To) > 0 && strings.TrimSpace(msg.To[0]) == "" {
		err = fmt.Errorf("%w: empty %s address", domain.ErrValidation, recipient)
	}
	if err == nil {
		_, err = d.sender.Send(ctx, msg)
	}
	if err != nil {
		logger.Error("notification failed", "order_id", o.OrderID, "recipient", recipient, "err", err)
		d.metrics.Notification(recipient, false)
		return false
	}

	logger.Info("notification sent", "order_id", o.OrderID, "recipient", recipient)
	d.metrics.Notification(recipient, true)
	return true
}

// Newsletter forwards a newsletter signup to the operator.
func (d *Dispatcher) Newsletter(ctx context.Context, s domain.Subscriber) error {
	html, err := render(newsletterTmpl, newsletterData(s, time.Now()))
	if err != nil {
		return fmt.Errorf("render newsletter: %w", err)
	}

	_, err = d.sender.Send(ctx, Message{
		From:    d.from,
		To:      []string{d.operator},
		Subject: "Nuevo suscriptor Newsletter - Makatatuajes",
		HTML:    html,
		ReplyTo: s.Email,
	})
	d.metrics.Notification("newsletter", err == nil)
	if err != nil {
		return fmt.Errorf("send newsletter: %w", err)
	}
	return nil
}

// Appointment tells the operator about a new calendar booking.
func (d *Dispatcher) Appointment(ctx context.Context, a domain.Appointment) error {
	html, err := render(appointmentTmpl, a)
	if err != nil {
		return fmt.Errorf("render appointment: %w", err)
	}

	_, err = d.sender.Send(ctx, Message{
		From:    d.from,
		To:      []string{d.operator},
		Subject: fmt.Sprintf("Nueva cita %s %s - %s", a.Date, a.TimeSlot.Start, a.Name),
		HTML:    html,
		ReplyTo: a.Email,
	})
	d.metrics.Notification(recipientOperator, err == nil)
	if err != nil {
		return fmt.Errorf("send appointment notice: %w", err)
	}
	return nil
}
