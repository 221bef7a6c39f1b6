package payment

import (
	"context"

	"vivapay-be/internal/logger"
	"vivapay-be/internal/viva"

	"go.uber.org/zap"
)

type vivaGateway struct {
	gw *viva.Gateway
}

func NewVivaGateway(gw *viva.Gateway) Gateway {
	return &vivaGateway{gw: gw}
}

// ----------------- CreateOrder -----------------

func (v *vivaGateway) CreateOrder(ctx context.Context, merchantTrns string, in CheckoutInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("merchant_trns", merchantTrns),
		zap.Int64("amount", in.Amount),
	)

	req := v.gw.Purchase(viva.PurchaseOptions{
		Amount:    in.Amount,
		Email:     in.Email,
		FullName:  in.FullName,
		Phone:     in.Phone,
		IsPreAuth: in.PreAuth,
	})
	req.SetTransactionID(merchantTrns)
	if in.Description != "" {
		req.SetDescription(in.Description)
	}

	resp, err := req.Send(ctx)
	if err != nil {
		log.Error("Viva order creation failed", zap.Error(err))
		return nil, err
	}

	redirect, ok := resp.(*viva.RedirectResponse)
	if !ok || !redirect.IsRedirect() {
		log.Error("Viva rejected order",
			zap.Int("status", resp.StatusCode()),
			zap.Int("error_code", resp.Code()),
			zap.String("error_text", resp.Message()),
		)
		return nil, gatewayError(resp)
	}

	log.Info("Viva order created", zap.String("order_code", redirect.OrderCode()))

	return &Order{
		OrderCode:   redirect.OrderCode(),
		RedirectURL: redirect.RedirectURL(),
	}, nil
}

// ----------------- GetTransactionStatus -----------------

func (v *vivaGateway) GetTransactionStatus(ctx context.Context, orderCode string) (*TransactionStatus, error) {
	log := logger.FromCtx(ctx).With(zap.String("order_code", orderCode))

	resp, err := v.gw.FetchOrderTransactions(orderCode).Send(ctx)
	if err != nil {
		log.Error("Viva transaction lookup failed", zap.Error(err))
		return nil, err
	}
	if !resp.IsSuccessful() {
		return nil, gatewayError(resp)
	}

	txs, _ := resp.Data()["Transactions"].([]any)
	if len(txs) == 0 {
		log.Warn("No transactions for order")
		return nil, ErrNoTransaction
	}

	// A finished transaction wins over earlier failed attempts.
	var picked map[string]any
	for _, raw := range txs {
		tx, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if picked == nil || tx["StatusId"] == vivaStatusFinished {
			picked = tx
		}
	}
	if picked == nil {
		return nil, ErrNoTransaction
	}

	txID, _ := picked["TransactionId"].(string)
	statusID, _ := picked["StatusId"].(string)
	return &TransactionStatus{TransactionID: txID, StatusID: statusID}, nil
}

// ----------------- Refund -----------------

func (v *vivaGateway) Refund(ctx context.Context, transactionID string, amount int64) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("transaction_id", transactionID),
		zap.Int64("amount", amount),
	)

	resp, err := v.gw.Refund(transactionID, amount).Send(ctx)
	if err != nil {
		log.Error("Viva refund failed", zap.Error(err))
		return "", err
	}
	if !resp.IsSuccessful() {
		log.Error("Viva rejected refund", zap.Int("status", resp.StatusCode()), zap.String("error_text", resp.Message()))
		return "", gatewayError(resp)
	}

	log.Info("Viva refund accepted")
	return resp.TransactionReference(), nil
}

// ----------------- CancelOrder -----------------

func (v *vivaGateway) CancelOrder(ctx context.Context, orderCode string) error {
	resp, err := v.gw.CancelOrder(orderCode).Send(ctx)
	if err != nil {
		logger.FromCtx(ctx).Error("Viva order cancel failed", zap.String("order_code", orderCode), zap.Error(err))
		return err
	}
	if !resp.IsSuccessful() {
		return gatewayError(resp)
	}
	return nil
}

// ----------------- WebhookKey -----------------

func (v *vivaGateway) WebhookKey(ctx context.Context) (string, error) {
	resp, err := v.gw.WebhookKey().Send(ctx)
	if err != nil {
		return "", err
	}
	if !resp.IsSuccessful() {
		return "", gatewayError(resp)
	}
	return viva.WebhookKey(resp), nil
}

func gatewayError(resp viva.Response) *GatewayError {
	return &GatewayError{
		StatusCode: resp.StatusCode(),
		Code:       resp.Code(),
		Message:    resp.Message(),
	}
}
