package viva

import (
	"context"
	"net/http"
)

// WebhookKeyRequest fetches the key Viva expects back when it verifies a
// webhook URL.
type WebhookKeyRequest struct {
	*RestRequest
}

func NewWebhookKeyRequest(base *RestRequest) *WebhookKeyRequest {
	base.method = http.MethodGet
	base.path = "/messages/config/token"
	return &WebhookKeyRequest{RestRequest: base}
}

func (r *WebhookKeyRequest) Send(ctx context.Context) (Response, error) {
	data, err := r.Data()
	if err != nil {
		return nil, err
	}
	return r.SendData(ctx, data)
}

// WebhookKey extracts the verification key from a WebhookKeyRequest response.
func WebhookKey(resp Response) string {
	return stringValue(resp.Data()["Key"])
}
