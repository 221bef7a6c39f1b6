package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vivapay-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	CreateCheckout(ctx context.Context, in CheckoutInput) (*Checkout, error)
	GetPayment(ctx context.Context, orderCode string) (*Payment, error)
	SyncStatus(ctx context.Context, orderCode string) (*Payment, error)
	Refund(ctx context.Context, orderCode string, amount int64) (*Payment, error)
	CancelCheckout(ctx context.Context, orderCode string) (*Payment, error)
	MarkAsPaid(ctx context.Context, orderCode, transactionID string) error
	MarkAsFailed(ctx context.Context, orderCode, transactionID string) error
	MarkAsRefunded(ctx context.Context, orderCode, transactionID string) error
	WebhookKey(ctx context.Context) (string, error)
}

type service struct {
	repo    Repository
	gateway Gateway
	newID   func() string
}

func NewService(repo Repository, gateway Gateway) Service {
	return &service{
		repo:    repo,
		gateway: gateway,
		newID:   uuid.NewString,
	}
}

func (s *service) CreateCheckout(ctx context.Context, in CheckoutInput) (*Checkout, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	in.Email = strings.TrimSpace(in.Email)

	merchantTrns := s.newID()
	log := logger.FromCtx(ctx).With(zap.String("merchant_trns", merchantTrns))

	order, err := s.gateway.CreateOrder(ctx, merchantTrns, in)
	if err != nil {
		return nil, fmt.Errorf("create viva order: %w", err)
	}

	p := &Payment{
		MerchantTrns:  merchantTrns,
		OrderCode:     order.OrderCode,
		Amount:        in.Amount,
		Currency:      DefaultCurrency,
		Status:        StatusPending,
		CustomerEmail: in.Email,
		Description:   in.Description,
	}
	if err := s.repo.SavePayment(ctx, p); err != nil {
		log.Error("Failed saving payment", zap.String("order_code", order.OrderCode), zap.Error(err))
		return nil, err
	}

	log.Info("Checkout created", zap.String("order_code", order.OrderCode))

	return &Checkout{Payment: p, RedirectURL: order.RedirectURL}, nil
}

func (s *service) GetPayment(ctx context.Context, orderCode string) (*Payment, error) {
	return s.repo.GetPaymentByOrderCode(ctx, orderCode)
}

// SyncStatus asks Viva for the current transaction state and stores it.
func (s *service) SyncStatus(ctx context.Context, orderCode string) (*Payment, error) {
	p, err := s.repo.GetPaymentByOrderCode(ctx, orderCode)
	if err != nil {
		return nil, err
	}

	status, err := s.gateway.GetTransactionStatus(ctx, orderCode)
	if errors.Is(err, ErrNoTransaction) {
		// customer has not paid yet
		return p, nil
	}
	if err != nil {
		return nil, err
	}

	next := status.LocalStatus()
	if next == p.Status {
		if status.TransactionID == "" || status.TransactionID == p.TransactionID {
			return p, nil
		}
	} else if !p.Status.CanTransition(next) {
		logger.FromCtx(ctx).Warn("Ignoring gateway status",
			zap.String("order_code", orderCode),
			zap.String("status", string(p.Status)),
			zap.String("gateway_status", string(next)),
		)
		return p, nil
	}

	if err := s.repo.UpdatePaymentStatus(ctx, orderCode, next, status.TransactionID); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("Payment status synced",
		zap.String("order_code", orderCode),
		zap.String("from", string(p.Status)),
		zap.String("to", string(next)),
	)

	p.Status = next
	if status.TransactionID != "" {
		p.TransactionID = status.TransactionID
	}
	return p, nil
}

// Refund returns the whole payment to the customer. amount is either zero or the
// full payment amount; anything else is rejected before Viva is called.
func (s *service) Refund(ctx context.Context, orderCode string, amount int64) (*Payment, error) {
	p, err := s.repo.GetPaymentByOrderCode(ctx, orderCode)
	if err != nil {
		return nil, err
	}
	if !p.Status.CanTransition(StatusRefunded) || p.TransactionID == "" {
		return nil, ErrInvalidState
	}
	if amount < 0 || amount > p.Amount {
		return nil, ErrInvalidAmount
	}
	if amount == 0 {
		amount = p.Amount
	}
	if amount != p.Amount {
		return nil, ErrPartialRefund
	}

	if _, err := s.gateway.Refund(ctx, p.TransactionID, amount); err != nil {
		return nil, fmt.Errorf("refund viva transaction: %w", err)
	}

	if err := s.repo.UpdatePaymentStatus(ctx, orderCode, StatusRefunded, ""); err != nil {
		return nil, err
	}

	p.Status = StatusRefunded
	return p, nil
}

func (s *service) CancelCheckout(ctx context.Context, orderCode string) (*Payment, error) {
	p, err := s.repo.GetPaymentByOrderCode(ctx, orderCode)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPending {
		return nil, ErrInvalidState
	}

	if err := s.gateway.CancelOrder(ctx, orderCode); err != nil {
		return nil, fmt.Errorf("cancel viva order: %w", err)
	}

	if err := s.repo.UpdatePaymentStatus(ctx, orderCode, StatusCancelled, ""); err != nil {
		return nil, err
	}

	p.Status = StatusCancelled
	return p, nil
}

func (s *service) MarkAsPaid(ctx context.Context, orderCode, transactionID string) error {
	return s.transition(ctx, orderCode, transactionID, StatusPaid)
}

func (s *service) MarkAsFailed(ctx context.Context, orderCode, transactionID string) error {
	return s.transition(ctx, orderCode, transactionID, StatusFailed)
}

// MarkAsRefunded keeps the original transaction id; the reversal has its own.
func (s *service) MarkAsRefunded(ctx context.Context, orderCode, _ string) error {
	return s.transition(ctx, orderCode, "", StatusRefunded)
}

func (s *service) WebhookKey(ctx context.Context) (string, error) {
	return s.gateway.WebhookKey(ctx)
}

// transition moves a payment to `to` when its current status allows it.
// Replaying a transition already applied is a no-op.
func (s *service) transition(ctx context.Context, orderCode, transactionID string, to Status) error {
	p, err := s.repo.GetPaymentByOrderCode(ctx, orderCode)
	if err != nil {
		return err
	}
	if p.Status == to {
		return nil
	}

	if !p.Status.CanTransition(to) {
		logger.FromCtx(ctx).Warn("Ignoring payment transition",
			zap.String("order_code", orderCode),
			zap.String("status", string(p.Status)),
			zap.String("to", string(to)),
		)
		return ErrInvalidState
	}

	return s.repo.UpdatePaymentStatus(ctx, orderCode, to, transactionID)
}
