package domain

import "errors"

var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("signature mismatch")
	ErrConfiguration  = errors.New("configuration error")
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderAlreadyExists   = errors.New("order already exists")
	ErrTokenAlreadyAssigned = errors.New("gateway token already assigned")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrOrderBusy            = errors.New("order is being processed")
)

var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayRejected    = errors.New("payment gateway rejected request")
)

var (
	ErrCalendarUnavailable = errors.New("calendar provider unavailable")
	ErrEmailFailed         = errors.New("email provider failed")
)
