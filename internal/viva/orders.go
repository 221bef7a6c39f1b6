package viva

import (
	"context"
	"net/http"
)

// PurchaseOptions are the order fields on top of the common parameters.
// Amount is in minor units (cents).
type PurchaseOptions struct {
	Amount          int64
	Email           string
	FullName        string
	Phone           string
	IsPreAuth       bool
	AllowRecurring  bool
	MaxInstallments int
	// PaymentTimeOut is the order lifetime in seconds.
	PaymentTimeOut int
}

// PurchaseRequest creates a payment order. A successful response redirects the
// customer to the hosted checkout.
type PurchaseRequest struct {
	*RestRequest
	PurchaseOptions
}

func NewPurchaseRequest(base *RestRequest, opts PurchaseOptions) *PurchaseRequest {
	base.method = http.MethodPost
	base.path = "/orders"
	base.newResponse = NewRedirectResponse
	return &PurchaseRequest{RestRequest: base, PurchaseOptions: opts}
}

func (r *PurchaseRequest) Data() (Payload, error) {
	if r.Amount <= 0 {
		return nil, missingParameter("amount")
	}

	data, err := r.RestRequest.Data()
	if err != nil {
		return nil, err
	}

	data["Amount"] = r.Amount
	data["IsPreAuth"] = r.IsPreAuth
	data["AllowRecurring"] = r.AllowRecurring

	if r.Email != "" {
		data["Email"] = r.Email
	}
	if r.FullName != "" {
		data["FullName"] = r.FullName
	}
	if r.Phone != "" {
		data["Phone"] = r.Phone
	}
	if r.MaxInstallments > 0 {
		data["MaxInstallments"] = r.MaxInstallments
	}
	if r.PaymentTimeOut > 0 {
		data["PaymentTimeOut"] = r.PaymentTimeOut
	}

	return data, nil
}

func (r *PurchaseRequest) Send(ctx context.Context) (Response, error) {
	data, err := r.Data()
	if err != nil {
		return nil, err
	}
	return r.SendData(ctx, data)
}

// FetchOrderRequest reads the state of a payment order.
type FetchOrderRequest struct {
	*RestRequest
	OrderCode string
}

func NewFetchOrderRequest(base *RestRequest, orderCode string) *FetchOrderRequest {
	base.method = http.MethodGet
	base.path = joinPath("orders", orderCode)
	return &FetchOrderRequest{RestRequest: base, OrderCode: orderCode}
}

func (r *FetchOrderRequest) Send(ctx context.Context) (Response, error) {
	if r.OrderCode == "" {
		return nil, missingParameter("orderCode")
	}
	data, err := r.Data()
	if err != nil {
		return nil, err
	}
	return r.SendData(ctx, data)
}

// CancelOrderRequest cancels an unpaid payment order.
type CancelOrderRequest struct {
	*RestRequest
	OrderCode string
}

func NewCancelOrderRequest(base *RestRequest, orderCode string) *CancelOrderRequest {
	base.method = http.MethodDelete
	base.path = joinPath("orders", orderCode)
	return &CancelOrderRequest{RestRequest: base, OrderCode: orderCode}
}

func (r *CancelOrderRequest) Send(ctx context.Context) (Response, error) {
	if r.OrderCode == "" {
		return nil, missingParameter("orderCode")
	}
	data, err := r.Data()
	if err != nil {
		return nil, err
	}
	return r.SendData(ctx, data)
}
