// Package httpapi exposes checkout and payment management over JSON.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"vivapay-be/internal/payment"
)

const maxBodyBytes = 64 << 10

type PaymentResponse struct {
	OrderCode     string    `json:"order_code"`
	MerchantTrns  string    `json:"merchant_trns"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CheckoutResponse struct {
	Payment     PaymentResponse `json:"payment"`
	RedirectURL string          `json:"redirect_url"`
}

type RefundInput struct {
	// Amount in minor units. Zero or the full amount refunds the whole payment; partial refunds are rejected.
	Amount int64 `json:"amount"`
}

type Handler struct {
	Svc payment.Service
}

func NewHandler(svc payment.Service) *Handler {
	return &Handler{Svc: svc}
}

// Register mounts the routes on mux, each wrapped by wrap when given.
func (h *Handler) Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	if wrap == nil {
		wrap = func(next http.Handler) http.Handler { return next }
	}

	mux.Handle("POST /checkout", wrap(http.HandlerFunc(h.CreateCheckout)))
	mux.Handle("GET /payments/{orderCode}", wrap(http.HandlerFunc(h.GetPayment)))
	mux.Handle("POST /payments/{orderCode}/sync", wrap(http.HandlerFunc(h.SyncPayment)))
	mux.Handle("POST /payments/{orderCode}/refund", wrap(http.HandlerFunc(h.RefundPayment)))
	mux.Handle("DELETE /payments/{orderCode}", wrap(http.HandlerFunc(h.CancelPayment)))
}

func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var in payment.CheckoutInput
	if err := decode(w, r, &in); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	checkout, err := h.Svc.CreateCheckout(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CheckoutResponse{
		Payment:     toResponse(checkout.Payment),
		RedirectURL: checkout.RedirectURL,
	})
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.GetPayment(r.Context(), r.PathValue("orderCode"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) SyncPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.SyncStatus(r.Context(), r.PathValue("orderCode"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	var in RefundInput
	if err := decode(w, r, &in); err != nil && !errors.Is(err, io.EOF) {
		WriteJSONError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	p, err := h.Svc.Refund(r.Context(), r.PathValue("orderCode"), in.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.CancelCheckout(r.Context(), r.PathValue("orderCode"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p))
}

// decode returns io.EOF for an empty body.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func toResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		OrderCode:     p.OrderCode,
		MerchantTrns:  p.MerchantTrns,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        string(p.Status),
		CustomerEmail: p.CustomerEmail,
		Description:   p.Description,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
