package application

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/RaikyD/studio-booking-service/internal/logger"
)

// StudioService covers the calendar and newsletter forms of the site.
type StudioService struct {
	cal      Calendar
	notifier OperatorNotifier
}

// NewStudioService accepts a nil calendar when no calendar is configured.
func NewStudioService(cal Calendar, notifier OperatorNotifier) *StudioService {
	return &StudioService{cal: cal, notifier: notifier}
}

func (s *StudioService) AvailableSlots(ctx context.Context, date string) ([]domain.TimeSlot, error) {
	if strings.TrimSpace(date) == "" {
		return nil, fmt.Errorf("%w: date parameter is required", domain.ErrValidation)
	}
	if s.cal == nil {
		return nil, fmt.Errorf("%w: calendar not configured", domain.ErrCalendarUnavailable)
	}
	return s.cal.AvailableSlots(ctx, date)
}

// BookAppointment creates the calendar event. The operator notice is best
// effort once the event exists.
func (s *StudioService) BookAppointment(ctx context.Context, a domain.Appointment) (string, error) {
	if s.cal == nil {
		return "", fmt.Errorf("%w: calendar not configured", domain.ErrCalendarUnavailable)
	}
	id, err := s.cal.CreateAppointment(ctx, a)
	if err != nil {
		return "", err
	}
	if err := s.notifier.Appointment(ctx, a); err != nil {
		logger.Warn("appointment notice not sent", "event_id", id, "err", err)
	}
	return id, nil
}

func (s *StudioService) Subscribe(ctx context.Context, sub domain.Subscriber) error {
	if strings.TrimSpace(sub.FirstName) == "" || strings.TrimSpace(sub.LastName) == "" ||
		strings.TrimSpace(sub.Phone) == "" || strings.TrimSpace(sub.Instagram) == "" ||
		strings.TrimSpace(sub.Email) == "" {
		return fmt.Errorf("%w: all fields are required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(sub.Email); err != nil {
		return fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	sub.Instagram = strings.TrimPrefix(strings.TrimSpace(sub.Instagram), "@")

	if err := s.notifier.Newsletter(ctx, sub); err != nil {
		return err
	}
	logger.Info("newsletter subscription", "email", logger.Mask(sub.Email))
	return nil
}
