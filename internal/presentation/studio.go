package presentation

import (
	"net/http"

	"github.com/RaikyD/studio-booking-service/internal/application"
	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/RaikyD/studio-booking-service/internal/logger"
	"github.com/RaikyD/studio-booking-service/internal/presentation/helpers"
	"github.com/go-chi/chi/v5"
)

type StudioHandler struct {
	svc *application.StudioService
}

func NewStudioHandler(svc *application.StudioService) *StudioHandler {
	return &StudioHandler{svc: svc}
}

func (h *StudioHandler) Register(r chi.Router) {
	r.Get("/api/available-slots", h.AvailableSlots)
	r.Post("/api/appointments", h.CreateAppointment)
	r.Post("/api/newsletter", h.Newsletter)
}

func (h *StudioHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.svc.AvailableSlots(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		logger.Warn("available slots failed", "err", err)
		helpers.HttpError(w, helpers.StatusFor(err), helpers.PublicMessage(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "slots": slots})
}

func (h *StudioHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var a domain.Appointment
	if err := helpers.DecodeJSON(r.Body, &a); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	id, err := h.svc.BookAppointment(r.Context(), a)
	if err != nil {
		logger.Warn("create appointment failed", "err", err)
		helpers.HttpError(w, helpers.StatusFor(err), helpers.PublicMessage(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"eventId": id,
		"message": "Appointment created successfully",
	})
}

func (h *StudioHandler) Newsletter(w http.ResponseWriter, r *http.Request) {
	var s domain.Subscriber
	if err := helpers.DecodeJSON(r.Body, &s); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if err := h.svc.Subscribe(r.Context(), s); err != nil {
		logger.Warn("newsletter subscription failed", "err", err)
		helpers.HttpError(w, helpers.StatusFor(err), helpers.PublicMessage(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Suscripción exitosa",
	})
}
