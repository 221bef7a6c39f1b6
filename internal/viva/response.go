package viva

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Response is what every Viva request returns once the HTTP exchange completed.
type Response interface {
	Request() *RestRequest
	Data() map[string]any
	StatusCode() int
	IsSuccessful() bool
	IsRedirect() bool
	TransactionReference() string
	Message() string
	Code() int
}

// RestResponse is the plain Viva response. It is never mutated after construction.
type RestResponse struct {
	request    *RestRequest
	data       map[string]any
	statusCode int
}

func NewRestResponse(req *RestRequest, data map[string]any, statusCode int) Response {
	return newRestResponse(req, data, statusCode)
}

func newRestResponse(req *RestRequest, data map[string]any, statusCode int) *RestResponse {
	if data == nil {
		data = map[string]any{}
	}
	return &RestResponse{request: req, data: data, statusCode: statusCode}
}

func (r *RestResponse) Request() *RestRequest { return r.request }
func (r *RestResponse) StatusCode() int       { return r.statusCode }
func (r *RestResponse) IsRedirect() bool      { return false }

// Data returns a copy of the parsed body.
func (r *RestResponse) Data() map[string]any {
	out := make(map[string]any, len(r.data))
	for k, v := range r.data {
		out[k] = v
	}
	return out
}

// Get returns a top-level field of the parsed body.
func (r *RestResponse) Get(key string) (any, bool) {
	v, ok := r.data[key]
	return v, ok
}

// IsSuccessful reports a non-error HTTP status with no Viva error code and no
// explicit Success=false in the body.
func (r *RestResponse) IsSuccessful() bool {
	if r.statusCode >= http.StatusBadRequest {
		return false
	}
	if s, ok := r.data["Success"].(bool); ok && !s {
		return false
	}
	return r.Code() == 0
}

// TransactionReference is the Viva TransactionId, falling back to the OrderCode.
func (r *RestResponse) TransactionReference() string {
	if ref := stringValue(r.data["TransactionId"]); ref != "" {
		return ref
	}
	return stringValue(r.data["OrderCode"])
}

func (r *RestResponse) Message() string {
	if msg := stringValue(r.data["ErrorText"]); msg != "" {
		return msg
	}
	return stringValue(r.data["Message"])
}

func (r *RestResponse) Code() int {
	code, _ := intValue(r.data["ErrorCode"])
	return int(code)
}

// OrderCode is the 16 digit payment order code returned by order endpoints.
func (r *RestResponse) OrderCode() string {
	return stringValue(r.data["OrderCode"])
}

// RedirectResponse is returned by requests that send the customer to the Viva
// hosted checkout.
type RedirectResponse struct {
	*RestResponse
}

func NewRedirectResponse(req *RestRequest, data map[string]any, statusCode int) Response {
	return &RedirectResponse{RestResponse: newRestResponse(req, data, statusCode)}
}

func (r *RedirectResponse) IsRedirect() bool {
	return r.IsSuccessful() && r.OrderCode() != ""
}

// RedirectURL points at the hosted checkout for the created order, on the
// same environment the order was created on.
func (r *RedirectResponse) RedirectURL() string {
	if !r.IsRedirect() {
		return ""
	}
	testMode := r.request != nil && r.request.TestMode()
	return BaseEndpoint(testMode) + "/web/checkout?ref=" + r.OrderCode()
}

func (r *RedirectResponse) RedirectMethod() string {
	return http.MethodGet
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

func intValue(v any) (int64, bool) {
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		return n, err == nil
	case float64:
		return int64(val), true
	case int:
		return int64(val), true
	case int64:
		return val, true
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
