package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type Repository interface {
	SavePayment(ctx context.Context, p *Payment) error
	GetPaymentByOrderCode(ctx context.Context, orderCode string) (*Payment, error)
	UpdatePaymentStatus(ctx context.Context, orderCode string, status Status, transactionID string) error
	WebhookRepository
}

type WebhookRepository interface {
	// SaveWebhookEvent stores a notification once per provider and event id.
	// Redeliveries return the stored row, with processed reporting whether an
	// earlier delivery was already applied.
	SaveWebhookEvent(
		ctx context.Context,
		provider string,
		eventID string,
		eventType string,
		orderCode string,
		payload json.RawMessage,
	) (webhookID int64, processed bool, err error)
	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SavePayment(ctx context.Context, p *Payment) error {
	const q = `
	INSERT INTO payments (
		merchant_trns,
		order_code,
		amount,
		currency,
		status,
		customer_email,
		description,
		provider
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, created_at, updated_at;
	`

	return r.db.QueryRowContext(ctx, q,
		p.MerchantTrns, p.OrderCode, p.Amount, p.Currency, string(p.Status),
		p.CustomerEmail, p.Description, ProviderViva,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repository) GetPaymentByOrderCode(ctx context.Context, orderCode string) (*Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, merchant_trns, order_code, COALESCE(transaction_id, ''), amount, currency,
		       status, customer_email, description, created_at, updated_at
		FROM payments WHERE order_code = $1
	`, orderCode)

	var p Payment
	var status string
	err := row.Scan(
		&p.ID, &p.MerchantTrns, &p.OrderCode, &p.TransactionID, &p.Amount, &p.Currency,
		&status, &p.CustomerEmail, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Status = Status(status)
	return &p, nil
}

// UpdatePaymentStatus keeps the stored transaction id when transactionID is empty.
func (r *repository) UpdatePaymentStatus(ctx context.Context, orderCode string, status Status, transactionID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $1,
		    transaction_id = COALESCE(NULLIF($2, ''), transaction_id),
		    updated_at = NOW()
		WHERE order_code = $3
	`, string(status), transactionID, orderCode)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *repository) SaveWebhookEvent(
	ctx context.Context,
	provider string,
	eventID string,
	eventType string,
	orderCode string,
	payload json.RawMessage,
) (int64, bool, error) {

	const q = `
	INSERT INTO payment_webhooks (
		provider,
		event_type,
		event_id,
		order_code,
		payload
	)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (provider, event_id)
	DO UPDATE SET event_type = payment_webhooks.event_type
	RETURNING id, processed_at IS NOT NULL;
	`

	var (
		id        int64
		processed bool
	)
	err := r.db.QueryRowContext(ctx, q, provider, eventType, eventID, orderCode, []byte(payload)).Scan(&id, &processed)
	if err != nil {
		return 0, false, err
	}

	return id, processed, nil
}

func (r *repository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payment_webhooks
		SET processed_at = NOW(), failure_reason = NULL
		WHERE id = $1
	`, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payment_webhooks
		SET failure_reason = $2
		WHERE id = $1
	`, webhookID, reason)
	return err
}
