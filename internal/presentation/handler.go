package presentation

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/application"
	"github.com/RaikyD/studio-booking-service/internal/config"
	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/RaikyD/studio-booking-service/internal/gateway"
	"github.com/RaikyD/studio-booking-service/internal/logger"
	"github.com/RaikyD/studio-booking-service/internal/presentation/helpers"
	"github.com/RaikyD/studio-booking-service/internal/signature"
	"github.com/go-chi/chi/v5"
)

type PaymentsHandler struct {
	payments        *application.PaymentService
	confirmations   *application.ConfirmationService
	pages           config.PagesConfig
	callbackTimeout time.Duration
}

func NewPaymentsHandler(
	payments *application.PaymentService,
	confirmations *application.ConfirmationService,
	pages config.PagesConfig,
	callbackTimeout time.Duration,
) *PaymentsHandler {
	if callbackTimeout <= 0 {
		callbackTimeout = 15 * time.Second
	}
	return &PaymentsHandler{
		payments:        payments,
		confirmations:   confirmations,
		pages:           pages,
		callbackTimeout: callbackTimeout,
	}
}

func (h *PaymentsHandler) Register(r chi.Router) {
	r.Post("/api/flow/payment", h.CreatePayment)
	r.Get("/api/flow/payment", h.Return)
	r.Post("/api/flow/confirm", h.Confirm)
	r.Get("/api/flow/return", h.Return)
	r.Post("/api/flow/return", h.Return)
	r.Get("/api/orders/{orderId}", h.GetOrder)
}

type bookingRequest struct {
	CustomerName string      `json:"customerName"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Gender       string      `json:"gender"`
	Comments     string      `json:"comments"`
	DepositLabel string      `json:"depositLabel"`
	Price        json.Number `json:"price"`
	// Set when the gateway posts the customer back to this endpoint.
	Token string `json:"token"`
}

type bookingResponse struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirectUrl"`
	OrderID     string `json:"orderId"`
}

// CreatePayment opens a gateway payment for the booking form. The gateway
// return may also land here as a form post carrying only a token.
func (h *PaymentsHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	mediatype, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediatype == "application/x-www-form-urlencoded" {
		h.Return(w, r)
		return
	}

	var req bookingRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Token != "" && req.Price == "" {
		h.redirectAfterReconcile(w, r, req.Token)
		return
	}

	price, err := req.Price.Int64()
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "price must be an integer")
		return
	}

	checkout, err := h.payments.CreatePayment(r.Context(), application.BookingRequest{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Gender:       req.Gender,
		Comments:     req.Comments,
		DepositLabel: req.DepositLabel,
		Price:        price,
	})
	if err != nil {
		helpers.HttpError(w, helpers.StatusFor(err), helpers.PublicMessage(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, bookingResponse{
		Success:     true,
		RedirectURL: checkout.RedirectURL,
		OrderID:     checkout.OrderID,
	})
}

type callbackPayload struct {
	Token     string `json:"token"`
	Signature string `json:"s"`
}

// Confirm is the gateway confirmation callback. Responses are plain text:
// the caller is the gateway, which redelivers on any non-200 answer.
func (h *PaymentsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	p, err := parseCallback(r)
	if err != nil {
		helpers.WriteText(w, http.StatusBadRequest, "bad request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.callbackTimeout)
	defer cancel()

	c, err := h.confirmations.Confirm(ctx, p.Token, p.Signature)
	if err != nil {
		status := helpers.StatusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error("confirmation failed", "token", logger.Mask(p.Token), "err", err)
			// Anything past verification is retryable from the gateway's side.
			if status == http.StatusBadGateway {
				status = http.StatusInternalServerError
			}
		}
		helpers.WriteText(w, status, strings.ToLower(http.StatusText(status)))
		return
	}

	logger.Info("callback processed", "order_id", c.Order.OrderID, "outcome", c.Outcome, "status", c.Order.Status)
	helpers.WriteText(w, http.StatusOK, gateway.CallbackAck)
}

func parseCallback(r *http.Request) (callbackPayload, error) {
	var p callbackPayload
	mediatype, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediatype {
	case "application/json":
		if err := helpers.DecodeJSON(r.Body, &p); err != nil {
			return p, err
		}
	default:
		if err := r.ParseForm(); err != nil {
			return p, err
		}
		p.Token = r.PostForm.Get("token")
		p.Signature = r.PostForm.Get(signature.Field)
	}
	return p, nil
}

// Return handles the customer coming back from the gateway: it polls the
// payment status and redirects to the matching page.
func (h *PaymentsHandler) Return(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" && r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			token = r.PostForm.Get("token")
		}
	}
	if strings.TrimSpace(token) == "" {
		http.Redirect(w, r, h.pages.Failure, http.StatusSeeOther)
		return
	}
	h.redirectAfterReconcile(w, r, token)
}

func (h *PaymentsHandler) redirectAfterReconcile(w http.ResponseWriter, r *http.Request, token string) {
	ctx, cancel := context.WithTimeout(r.Context(), h.callbackTimeout)
	defer cancel()

	c, err := h.confirmations.Reconcile(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			http.Redirect(w, r, h.pages.Failure, http.StatusSeeOther)
			return
		}
		logger.Warn("return reconcile failed", "token", logger.Mask(token), "err", err)
		http.Redirect(w, r, h.pages.Pending, http.StatusSeeOther)
		return
	}

	page := h.pages.Pending
	switch c.Order.Status {
	case domain.OrderStatusConfirmed:
		page = h.pages.Success
	case domain.OrderStatusRejected, domain.OrderStatusFailed:
		page = h.pages.Failure
	}
	http.Redirect(w, r, withOrder(page, c.Order.OrderID), http.StatusSeeOther)
}

func withOrder(page, orderID string) string {
	u, err := url.Parse(page)
	if err != nil {
		return page
	}
	q := u.Query()
	q.Set("order", orderID)
	u.RawQuery = q.Encode()
	return u.String()
}

type orderView struct {
	OrderID   string             `json:"orderId"`
	Status    domain.OrderStatus `json:"status"`
	Amount    int64              `json:"amount"`
	Currency  string             `json:"currency"`
	Notified  bool               `json:"notified"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func (h *PaymentsHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderId")
	o, err := h.payments.GetOrder(r.Context(), id)
	if err != nil {
		helpers.HttpError(w, helpers.StatusFor(err), helpers.PublicMessage(err))
		return
	}

	helpers.WriteJSON(w, http.StatusOK, orderView{
		OrderID:   o.OrderID,
		Status:    o.Status,
		Amount:    o.Amount,
		Currency:  o.Currency,
		Notified:  o.NotifiedAt != nil,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	})
}
