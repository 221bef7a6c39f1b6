package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"vivapay-be/internal/logger"
	"vivapay-be/internal/payment"
	"vivapay-be/internal/viva"

	"go.uber.org/zap"
)

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

// WriteJSONError writes {"error": msg} with the given status.
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps payment and gateway errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var gwErr *payment.GatewayError

	switch {
	case errors.Is(err, payment.ErrPaymentNotFound):
		WriteJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, payment.ErrInvalidAmount), errors.Is(err, payment.ErrPartialRefund):
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrInvalidState):
		WriteJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, viva.ErrMissingParameter):
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &gwErr):
		logger.FromCtx(r.Context()).Warn("Viva rejected request",
			zap.Int("status", gwErr.StatusCode),
			zap.Int("code", gwErr.Code),
			zap.String("message", gwErr.Message),
		)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: gwErr.Message, Code: gwErr.Code})
	case errors.Is(err, viva.ErrInvalidResponse):
		logger.FromCtx(r.Context()).Error("Viva unreachable", zap.Error(err))
		WriteJSONError(w, http.StatusBadGateway, "payment gateway unavailable")
	default:
		logger.FromCtx(r.Context()).Error("Request failed", zap.Error(err))
		WriteJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
