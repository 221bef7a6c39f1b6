package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"vivapay-be/internal/logger"
	"vivapay-be/internal/payment"

	"go.uber.org/zap"
)

// Viva event type ids.
const (
	EventTransactionPaymentCreated  = 1796
	EventTransactionReversalCreated = 1797
	EventTransactionFailed          = 1798
)

const maxBodyBytes = 1 << 20

// Notification is the envelope Viva posts to the webhook URL.
type Notification struct {
	MessageID     string    `json:"MessageId"`
	EventTypeID   int       `json:"EventTypeId"`
	Created       string    `json:"Created"`
	CorrelationID string    `json:"CorrelationId"`
	EventData     EventData `json:"EventData"`
}

type EventData struct {
	OrderCode     json.Number `json:"OrderCode"`
	TransactionID string      `json:"TransactionId"`
	StatusID      string      `json:"StatusId"`
	MerchantTrns  string      `json:"MerchantTrns"`
	Amount        json.Number `json:"Amount"`
}

type Handler struct {
	Svc  payment.Service
	Repo payment.WebhookRepository
}

func NewWebhookHandler(svc payment.Service, repo payment.WebhookRepository) *Handler {
	return &Handler{Svc: svc, Repo: repo}
}

// ServeHTTP answers Viva's GET verification with the webhook key and processes
// POSTed notifications.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.VerificationHandler(w, r)
	case http.MethodPost:
		h.PaymentWebhookHandler(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) VerificationHandler(w http.ResponseWriter, r *http.Request) {
	key, err := h.Svc.WebhookKey(r.Context())
	if err != nil {
		logger.FromCtx(r.Context()).Error("Failed fetching Viva webhook key", zap.Error(err))
		http.Error(w, "webhook key unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"Key": key})
}

func (h *Handler) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		log.Warn("Invalid webhook payload", zap.Error(err))
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	orderCode := n.EventData.OrderCode.String()
	if n.MessageID == "" || orderCode == "" {
		http.Error(w, "missing MessageId or OrderCode", http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("message_id", n.MessageID),
		zap.Int("event_type", n.EventTypeID),
		zap.String("order_code", orderCode),
	)

	webhookID, processed, err := h.Repo.SaveWebhookEvent(ctx, payment.ProviderViva, n.MessageID, strconv.Itoa(n.EventTypeID), orderCode, body)
	if err != nil {
		log.Error("Failed storing webhook", zap.Error(err))
		http.Error(w, "failed to store webhook", http.StatusInternalServerError)
		return
	}
	if processed {
		log.Info("Duplicate webhook ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	err = h.apply(ctx, n, orderCode)
	if errors.Is(err, payment.ErrInvalidState) {
		// out-of-order delivery, nothing to retry
		log.Warn("Webhook does not apply to payment state")
		err = nil
	}
	if err != nil {
		log.Error("Failed applying webhook", zap.Error(err))
		_ = h.Repo.MarkWebhookFailed(ctx, webhookID, err.Error())
		http.Error(w, "failed to update payment", http.StatusInternalServerError)
		return
	}

	if err := h.Repo.MarkWebhookProcessed(ctx, webhookID); err != nil {
		log.Error("Failed marking webhook processed", zap.Error(err))
	}

	log.Info("Webhook processed")
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) apply(ctx context.Context, n Notification, orderCode string) error {
	txID := n.EventData.TransactionID

	switch n.EventTypeID {
	case EventTransactionPaymentCreated:
		if n.EventData.StatusID != "F" {
			return nil
		}
		return h.Svc.MarkAsPaid(ctx, orderCode, txID)
	case EventTransactionFailed:
		return h.Svc.MarkAsFailed(ctx, orderCode, txID)
	case EventTransactionReversalCreated:
		return h.Svc.MarkAsRefunded(ctx, orderCode, txID)
	default:
		return nil
	}
}
