package payment

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidState    = errors.New("payment is not in a valid state for this operation")
	ErrNoTransaction   = errors.New("no transaction found for order")
	ErrPartialRefund   = errors.New("partial refunds are not supported")
)

// GatewayError is a well-formed Viva answer reporting a failure.
type GatewayError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("viva error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
}
