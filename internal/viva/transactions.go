package viva

import (
	"context"
	"net/http"
)

// FetchTransactionRequest looks up transactions either by Viva transaction id
// or by the order code they were paid against.
type FetchTransactionRequest struct {
	*RestRequest
	TransactionReference string
	OrderCode            string
}

func NewFetchTransactionRequest(base *RestRequest, transactionRef, orderCode string) *FetchTransactionRequest {
	base.method = http.MethodGet
	base.path = "/transactions"
	if transactionRef != "" {
		base.path = joinPath("transactions", transactionRef)
	}
	return &FetchTransactionRequest{
		RestRequest:          base,
		TransactionReference: transactionRef,
		OrderCode:            orderCode,
	}
}

func (r *FetchTransactionRequest) Data() (Payload, error) {
	if r.TransactionReference == "" && r.OrderCode == "" {
		return nil, missingParameter("transactionReference or orderCode")
	}

	data, err := r.RestRequest.Data()
	if err != nil {
		return nil, err
	}
	if r.TransactionReference == "" {
		data["ordercode"] = r.OrderCode
	}
	return data, nil
}

func (r *FetchTransactionRequest) Send(ctx context.Context) (Response, error) {
	data, err := r.Data()
	if err != nil {
		return nil, err
	}
	return r.SendData(ctx, data)
}

// CaptureRequest charges a previously pre-authorized transaction.
type CaptureRequest struct {
	*RestRequest
	TransactionReference string
	Amount               int64
}

func NewCaptureRequest(base *RestRequest, transactionRef string, amount int64) *CaptureRequest {
	base.method = http.MethodPost
	base.path = joinPath("transactions", transactionRef)
	return &CaptureRequest{RestRequest: base, TransactionReference: transactionRef, Amount: amount}
}

func (r *CaptureRequest) Data() (Payload, error) {
	if r.TransactionReference == "" {
		return nil, missingParameter("transactionReference")
	}
	if r.Amount <= 0 {
		return nil, missingParameter("amount")
	}

	data, err := r.RestRequest.Data()
	if err != nil {
		return nil, err
	}
	data["Amount"] = r.Amount
	return data, nil
}

func (r *CaptureRequest) Send(ctx context.Context) (Response, error) {
	data, err := r.Data()
	if err != nil {
		return nil, err
	}
	return r.SendData(ctx, data)
}

// RefundRequest cancels a same-day transaction or refunds a settled one,
// fully or partially.
type RefundRequest struct {
	*RestRequest
	TransactionReference string
	Amount               int64
}

func NewRefundRequest(base *RestRequest, transactionRef string, amount int64) *RefundRequest {
	base.method = http.MethodDelete
	base.path = joinPath("transactions", transactionRef)
	return &RefundRequest{RestRequest: base, TransactionReference: transactionRef, Amount: amount}
}

func (r *RefundRequest) Data() (Payload, error) {
	if r.TransactionReference == "" {
		return nil, missingParameter("transactionReference")
	}
	if r.Amount <= 0 {
		return nil, missingParameter("amount")
	}

	data, err := r.RestRequest.Data()
	if err != nil {
		return nil, err
	}
	data["Amount"] = r.Amount
	return data, nil
}

func (r *RefundRequest) Send(ctx context.Context) (Response, error) {
	data, err := r.Data()
	if err != nil {
		return nil, err
	}
	return r.SendData(ctx, data)
}
