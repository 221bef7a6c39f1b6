// internal/payment/payment.go
package payment

import (
	"context"
)

// Gateway is the provider-facing side of the payment service.
type Gateway interface {
	CreateOrder(ctx context.Context, merchantTrns string, in CheckoutInput) (*Order, error)
	GetTransactionStatus(ctx context.Context, orderCode string) (*TransactionStatus, error)
	Refund(ctx context.Context, transactionID string, amount int64) (string, error)
	CancelOrder(ctx context.Context, orderCode string) error
	WebhookKey(ctx context.Context) (string, error)
}
