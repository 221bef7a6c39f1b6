package viva

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"vivapay-be/internal/logger"
	"vivapay-be/internal/metrics"

	"go.uber.org/zap"
)

// Payload is the set of fields serialized into an outgoing request.
type Payload map[string]any

// ResponseFactory wraps a parsed body and status code into a Response.
// Requests that need a different response shape, such as a redirect, supply their own.
type ResponseFactory func(req *RestRequest, data map[string]any, statusCode int) Response

// RestRequest is the common part of every Viva call. Concrete requests embed it,
// extend Data and pick the method, path and response factory.
type RestRequest struct {
	client      HTTPClient
	settings    Settings
	params      Parameters
	method      string
	path        string
	newResponse ResponseFactory
}

func NewRestRequest(client HTTPClient, settings Settings, params Parameters) *RestRequest {
	return &RestRequest{
		client:      client,
		settings:    settings,
		params:      params,
		method:      http.MethodPost,
		newResponse: NewRestResponse,
	}
}

func (r *RestRequest) MerchantID() string        { return r.settings.MerchantID }
func (r *RestRequest) TestMode() bool            { return r.settings.TestMode }
func (r *RestRequest) Parameters() Parameters    { return r.params }
func (r *RestRequest) SetMerchantID(v string)    { r.settings.MerchantID = v }
func (r *RestRequest) SetAPIKey(v string)        { r.settings.APIKey = v }
func (r *RestRequest) SetTestMode(v bool)        { r.settings.TestMode = v }
func (r *RestRequest) SetRequestLang(v string)   { r.params.RequestLang = &v }
func (r *RestRequest) SetTransactionID(v string) { r.params.TransactionID = &v }
func (r *RestRequest) SetDescription(v string)   { r.params.Description = &v }
func (r *RestRequest) SetSourceCode(v string)    { r.params.SourceCode = &v }

// HTTPMethod is POST unless the concrete request chose otherwise.
func (r *RestRequest) HTTPMethod() string {
	return r.method
}

// Endpoint is the API root for the current test mode plus the request path.
func (r *RestRequest) Endpoint() string {
	return ResolveEndpoint(r.settings.TestMode) + r.path
}

// Data returns the optional common fields. All four keys are always present.
func (r *RestRequest) Data() (Payload, error) {
	return Payload{
		"RequestLang":  optional(r.params.RequestLang),
		"MerchantTrns": optional(r.params.TransactionID),
		"CustomerTrns": optional(r.params.Description),
		"SourceCode":   optional(r.params.SourceCode),
	}, nil
}

// CreateResponse builds the response bound to this request.
func (r *RestRequest) CreateResponse(data map[string]any, statusCode int) Response {
	return r.newResponse(r, data, statusCode)
}

// SendData performs exactly one HTTP exchange with the gateway.
// POST requests carry data as a JSON body; other methods carry it as a query string.
// Any status code the gateway answers with is returned as a Response. Only a
// failed exchange results in an error, always an *InvalidResponseError.
func (r *RestRequest) SendData(ctx context.Context, data Payload) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	method := r.HTTPMethod()
	endpoint := r.Endpoint()
	log := logger.FromCtx(ctx).With(
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Bool("test_mode", r.settings.TestMode),
	)

	req, err := r.buildHTTPRequest(ctx, method, endpoint, data)
	if err != nil {
		log.Error("Failed building gateway request", zap.Error(err))
		return nil, newInvalidResponseError(err)
	}

	log.Debug("Sending request to Viva")

	timer := metrics.StartTimer()
	metrics.Viva.Requests.Inc()
	defer func() { metrics.Viva.Observe(timer.Duration()) }()

	resp, err := r.client.Do(req)
	if err != nil {
		metrics.Viva.Failures.Inc()
		log.Error("Viva request failed", zap.Error(err))
		return nil, newInvalidResponseError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.Viva.Failures.Inc()
		log.Error("Failed to read response body", zap.Error(err))
		return nil, newInvalidResponseError(err)
	}

	parsed, err := decodeBody(body)
	if err != nil {
		metrics.Viva.Failures.Inc()
		log.Error("Failed decoding Viva response",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", body),
			zap.Error(err),
		)
		return nil, newInvalidResponseError(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		metrics.Viva.HTTPErrors.Inc()
	}
	log.Info("Viva responded",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", timer.Duration()),
	)

	return r.CreateResponse(parsed, resp.StatusCode), nil
}

func (r *RestRequest) buildHTTPRequest(ctx context.Context, method, endpoint string, data Payload) (*http.Request, error) {
	var req *http.Request

	if method == http.MethodPost {
		jsonBody, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}

		req, err = http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
	} else {
		if query := buildQuery(data); query != "" {
			endpoint += "?" + query
		}

		var err error
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return nil, err
		}
	}

	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(r.settings.MerchantID, r.settings.APIKey)

	return req, nil
}

// decodeBody parses a JSON object. An empty body is an empty map.
// Numbers are kept as json.Number so large order codes survive intact.
func decodeBody(body []byte) (map[string]any, error) {
	parsed := map[string]any{}
	if len(bytes.TrimSpace(body)) == 0 {
		return parsed, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed == nil {
		// body was the literal null
		parsed = map[string]any{}
	}

	return parsed, nil
}

func optional(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func joinPath(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return "/" + strings.Join(escaped, "/")
}
