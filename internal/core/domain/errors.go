package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionExpired     = errors.New("session expired")
	ErrForbidden          = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrNetwork            = errors.New("network failure")
	ErrRejected           = errors.New("request rejected")
	ErrStockChanged       = errors.New("cart stock changed")
)

// A ValidationError is raised before anything is sent over the network.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// An APIError is a non-successful response of the API gateway.
//
// Kind is one of the package sentinel errors and is reachable with [errors.Is].
type APIError struct {
	Status int
	Detail string
	Kind   error
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Detail)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// StockAdjustment describes how re-validation changed a cart line.
type StockAdjustment struct {
	ProductID    int64
	Name         string
	WasQuantity  int
	NowQuantity  int
	AvailableNow int
}

func (a StockAdjustment) Removed() bool {
	return a.NowQuantity == 0
}

type StockChangedError struct {
	Adjustments []StockAdjustment
}

func (e *StockChangedError) Error() string {
	parts := make([]string, 0, len(e.Adjustments))
	for _, a := range e.Adjustments {
		if a.Removed() {
			parts = append(parts, fmt.Sprintf("%q sold out", a.Name))
			continue
		}
		parts = append(parts, fmt.Sprintf(
			"%q reduced %d -> %d", a.Name, a.WasQuantity, a.NowQuantity,
		))
	}
	return ErrStockChanged.Error() + ": " + strings.Join(parts, ", ")
}

func (e *StockChangedError) Is(target error) bool {
	return target == ErrStockChanged
}

// UserMessage returns the text a view shows for err.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}

	switch {
	case errors.Is(err, ErrSessionExpired):
		return "Your session has expired, please log in again"
	case errors.Is(err, ErrNetwork):
		return "Network error, please try again later"
	}
	return fallback
}
