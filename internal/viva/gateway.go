package viva

import (
	"net/http"
	"time"

	"vivapay-be/internal/logger"
)

// Gateway builds requests bound to one merchant account.
type Gateway struct {
	client   HTTPClient
	settings Settings
	defaults Parameters
}

// NewGateway returns a Gateway sending through client. A nil client gets a
// plain *http.Client with a 15 second timeout. defaults seeds the common
// parameters, typically SourceCode and RequestLang, of every request built.
func NewGateway(settings Settings, client HTTPClient, defaults Parameters) *Gateway {
	if settings.MerchantID == "" || settings.APIKey == "" {
		logger.L().Warn("Viva merchant credentials are empty")
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &Gateway{
		client:   client,
		settings: settings,
		defaults: defaults,
	}
}

func (g *Gateway) Name() string       { return "Viva Payments" }
func (g *Gateway) Settings() Settings { return g.settings }
func (g *Gateway) SetTestMode(v bool) { g.settings.TestMode = v }

func (g *Gateway) newRequest() *RestRequest {
	return NewRestRequest(g.client, g.settings, g.defaults)
}

func (g *Gateway) Purchase(opts PurchaseOptions) *PurchaseRequest {
	return NewPurchaseRequest(g.newRequest(), opts)
}

func (g *Gateway) FetchOrder(orderCode string) *FetchOrderRequest {
	return NewFetchOrderRequest(g.newRequest(), orderCode)
}

func (g *Gateway) CancelOrder(orderCode string) *CancelOrderRequest {
	return NewCancelOrderRequest(g.newRequest(), orderCode)
}

func (g *Gateway) FetchTransaction(transactionRef string) *FetchTransactionRequest {
	return NewFetchTransactionRequest(g.newRequest(), transactionRef, "")
}

func (g *Gateway) FetchOrderTransactions(orderCode string) *FetchTransactionRequest {
	return NewFetchTransactionRequest(g.newRequest(), "", orderCode)
}

func (g *Gateway) Capture(transactionRef string, amount int64) *CaptureRequest {
	return NewCaptureRequest(g.newRequest(), transactionRef, amount)
}

func (g *Gateway) Refund(transactionRef string, amount int64) *RefundRequest {
	return NewRefundRequest(g.newRequest(), transactionRef, amount)
}

func (g *Gateway) WebhookKey() *WebhookKeyRequest {
	return NewWebhookKeyRequest(g.newRequest())
}
