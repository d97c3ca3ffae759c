package services

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrOrderItemNotFound     = errors.New("order item not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrAddressNotFound       = errors.New("address not found")
	ErrStripePaymentNotFound = errors.New("stripe payment not found")
	ErrLoginRequired         = errors.New("login required")
	ErrForbidden             = errors.New("forbidden")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrPaymentsDisabled      = errors.New("payment provider is not configured")
)

// ValidationError carries one message per invalid input field. Err, when
// set, is the sentinel the failure maps to.
type ValidationError struct {
	Fields map[string]string
	Err    error
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, e.Fields[key]))
	}
	msg := "validation failed: " + strings.Join(parts, "; ")
	if e.Err != nil {
		return e.Err.Error() + ": " + msg
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
