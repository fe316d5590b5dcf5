package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewWithDetails(code int, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

var (
	ErrBadRequest          = New(http.StatusBadRequest, "Bad request")
	ErrUnauthorized        = New(http.StatusUnauthorized, "Unauthorized")
	ErrNotFound            = New(http.StatusNotFound, "Not found")
	ErrConflict            = New(http.StatusConflict, "Conflict")
	ErrInternalServerError = New(http.StatusInternalServerError, "Internal server error")

	// Remote directory failure modes. Not-found lookups are expected
	// control flow and are never wrapped into RemoteUnavailable.
	ErrRemoteUnavailable = New(http.StatusBadGateway, "Okdesk API unavailable")
	ErrAmbiguousMatch    = New(http.StatusConflict, "Ambiguous directory match")

	// Identity resolution failure modes.
	ErrContactNotResolved = New(http.StatusNotFound, "Contact not resolved")
	ErrCompanyNotResolved = New(http.StatusNotFound, "Company not resolved")
	ErrNoPhone            = New(http.StatusBadRequest, "User has no phone number")
	ErrNoTaxID            = New(http.StatusBadRequest, "User has no tax id")

	// Webhook processing failure modes.
	ErrDuplicateDelivery = New(http.StatusOK, "Duplicate webhook delivery")
	ErrMalformedWebhook  = New(http.StatusBadRequest, "Malformed webhook payload")

	ErrUserNotFound     = New(http.StatusNotFound, "User not found")
	ErrTicketNotFound   = New(http.StatusNotFound, "Ticket not found")
	ErrInvalidSignature = New(http.StatusForbidden, "Invalid webhook signature")

	ErrBotSendFailed = New(http.StatusInternalServerError, "Failed to send bot message")
)

func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewWithDetails(http.StatusInternalServerError, "Internal server error", err.Error())
}

// IsRemoteUnavailable reports whether err carries the transport-level
// failure marker, directly or wrapped.
func IsRemoteUnavailable(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable)
}
