package viva

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(rt http.RoundTripper) *Gateway {
	return NewGateway(
		Settings{MerchantID: "merchant-1", APIKey: "s3cret", TestMode: true},
		&http.Client{Transport: rt},
		Parameters{SourceCode: String("Default"), RequestLang: String("en-US")},
	)
}

func TestNewGateway(t *testing.T) {
	gw := NewGateway(Settings{MerchantID: "m", APIKey: "k"}, nil, Parameters{})

	assert.Equal(t, "Viva Payments", gw.Name())
	assert.IsType(t, &http.Client{}, gw.client)
	assert.False(t, gw.Settings().TestMode)

	gw.SetTestMode(true)
	assert.True(t, gw.Settings().TestMode)
}

func TestGateway_Purchase(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		gw := newTestGateway(MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "https://demo.vivapayments.com/api/orders", req.URL.String())

			user, pass, ok := req.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "merchant-1", user)
			assert.Equal(t, "s3cret", pass)

			var body map[string]any
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, float64(1500), body["Amount"])
			assert.Equal(t, "buyer@example.com", body["Email"])
			assert.Equal(t, "Default", body["SourceCode"])
			assert.Equal(t, "en-US", body["RequestLang"])
			assert.Equal(t, "ord-1", body["MerchantTrns"])
			assert.Equal(t, false, body["IsPreAuth"])
			_, hasPhone := body["Phone"]
			assert.False(t, hasPhone)
			_, hasDescription := body["CustomerTrns"]
			assert.True(t, hasDescription)

			return jsonResponse(http.StatusOK, `{"OrderCode": 1272214778972604, "ErrorCode": 0, "ErrorText": null, "Success": true}`)
		}))

		req := gw.Purchase(PurchaseOptions{Amount: 1500, Email: "buyer@example.com"})
		req.SetTransactionID("ord-1")

		resp, err := req.Send(ctx)
		require.NoError(t, err)
		require.True(t, resp.IsRedirect())
		redirect := resp.(*RedirectResponse)
		assert.Equal(t, "https://demo.vivapayments.com/web/checkout?ref=1272214778972604", redirect.RedirectURL())
	})

	t.Run("MissingAmount", func(t *testing.T) {
		called := false
		gw := newTestGateway(MockRoundTripper(func(req *http.Request) *http.Response {
			called = true
			return jsonResponse(http.StatusOK, `{}`)
		}))

		_, err := gw.Purchase(PurchaseOptions{}).Send(ctx)
		assert.ErrorIs(t, err, ErrMissingParameter)
		assert.Contains(t, err.Error(), "amount")
		assert.False(t, called)
	})

	t.Run("OptionalFields", func(t *testing.T) {
		gw := newTestGateway(nil)
		data, err := gw.Purchase(PurchaseOptions{
			Amount:          100,
			FullName:        "Jane Doe",
			Phone:           "+30 210 0000000",
			IsPreAuth:       true,
			AllowRecurring:  true,
			MaxInstallments: 3,
			PaymentTimeOut:  1800,
		}).Data()
		require.NoError(t, err)

		assert.Equal(t, "Jane Doe", data["FullName"])
		assert.Equal(t, "+30 210 0000000", data["Phone"])
		assert.Equal(t, true, data["IsPreAuth"])
		assert.Equal(t, true, data["AllowRecurring"])
		assert.Equal(t, 3, data["MaxInstallments"])
		assert.Equal(t, 1800, data["PaymentTimeOut"])
	})
}

func TestGateway_Orders(t *testing.T) {
	ctx := context.Background()

	t.Run("FetchOrder", func(t *testing.T) {
		gw := newTestGateway(MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "/api/orders/1272214778972604", req.URL.Path)
			assert.Equal(t, "Default", req.URL.Query().Get("SourceCode"))
			return jsonResponse(http.StatusOK, `{"OrderCode": 1272214778972604, "StateId": 0}`)
		}))

		resp, err := gw.FetchOrder("1272214778972604").Send(ctx)
		require.NoError(t, err)
		assert.Equal(t, json.Number("0"), resp.Data()["StateId"])
		assert.False(t, resp.IsRedirect())
	})

	t.Run("CancelOrder", func(t *testing.T) {
		gw := newTestGateway(MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodDelete, req.Method)
			assert.Equal(t, "/api/orders/1272214778972604", req.URL.Path)
			return jsonResponse(http.StatusOK, `{"OrderCode": 1272214778972604, "ErrorCode": 0}`)
		}))

		resp, err := gw.CancelOrder("1272214778972604").Send(ctx)
		require.NoError(t, err)
		assert.True(t, resp.IsSuccessful())
	})

	t.Run("MissingOrderCode", func(t *testing.T) {
		gw := newTestGateway(nil)

		_, err := gw.FetchOrder("").Send(ctx)
		assert.ErrorIs(t, err, ErrMissingParameter)

		_, err = gw.CancelOrder("").Send(ctx)
		assert.ErrorIs(t, err, ErrMissingParameter)
	})
}

func TestGateway_Transactions(t *testing.T) {
	ctx := context.Background()
	txID := "252b950e-27f2-4300-ada1-4dedd7c17904"

	t.Run("FetchTransaction", func(t *testing.T) {
		gw := newTestGateway(MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "/api/transactions/"+txID, req.URL.Path)
			assert.Empty(t, req.URL.Query().Get("ordercode"))
			return jsonResponse(http.StatusOK, `{"Transactions": [{"TransactionId": "`+txID+`", "StatusId": "F"}], "ErrorCode": 0}`)
		}))

		resp, err := gw.FetchTransaction(txID).Send(ctx)
		require.NoError(t, err)
		assert.Len(t, resp.Data()["Transactions"], 1)
	})

	t.Run("FetchOrderTransactions", func(t *testing.T) {
		gw := newTestGateway(MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, "/api/transactions", req.URL.Path)
			assert.Equal(t, "1272214778972604", req.URL.Query().Get("ordercode"))
			return jsonResponse(http.StatusOK, `{"Transactions": []}`)
		}))

		_, err := gw.FetchOrderTransactions("1272214778972604").Send(ctx)
		require.NoError(t, err)
	})

	t.Run("FetchWithoutReference", func(t *testing.T) {
		_, err := newTestGateway(nil).FetchOrderTransactions("").Send(ctx)
		assert.ErrorIs(t, err, ErrMissingParameter)
	})

	t.Run("Capture", func(t *testing.T) {
		gw := newTestGateway(MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "/api/transactions/"+txID, req.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, float64(700), body["Amount"])

			return jsonResponse(http.StatusOK, `{"TransactionId": "c90d4902-6245-449f-b2b0-51d99cd09cfe", "StatusId": "F", "ErrorCode": 0}`)
		}))

		resp, err := gw.Capture(txID, 700).Send(ctx)
		require.NoError(t, err)
		assert.Equal(t, "c90d4902-6245-449f-b2b0-51d99cd09cfe", resp.TransactionReference())
	})

	t.Run("Refund", func(t *testing.T) {
		gw := newTestGateway(MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodDelete, req.Method)
			assert.Equal(t, "/api/transactions/"+txID, req.URL.Path)
			assert.Equal(t, "250", req.URL.Query().Get("Amount"))
			assert.Equal(t, "Default", req.URL.Query().Get("SourceCode"))
			assert.Empty(t, readBody(t, req))
			return jsonResponse(http.StatusOK, `{"TransactionId": "e2a3b1c4-0000-4000-8000-000000000001", "ErrorCode": 0}`)
		}))

		resp, err := gw.Refund(txID, 250).Send(ctx)
		require.NoError(t, err)
		assert.True(t, resp.IsSuccessful())
	})

	t.Run("RefundValidation", func(t *testing.T) {
		gw := newTestGateway(nil)

		_, err := gw.Refund("", 100).Send(ctx)
		assert.ErrorIs(t, err, ErrMissingParameter)

		_, err = gw.Refund(txID, 0).Send(ctx)
		assert.ErrorIs(t, err, ErrMissingParameter)

		_, err = gw.Capture(txID, 0).Send(ctx)
		assert.ErrorIs(t, err, ErrMissingParameter)
	})
}

func TestGateway_WebhookKey(t *testing.T) {
	gw := newTestGateway(MockRoundTripper(func(req *http.Request) *http.Response {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/api/messages/config/token", req.URL.Path)
		return jsonResponse(http.StatusOK, `{"Key": "B3248B0E55B4E2A6E6E1A4E1B0B6D6B7"}`)
	}))

	resp, err := gw.WebhookKey().Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "B3248B0E55B4E2A6E6E1A4E1B0B6D6B7", WebhookKey(resp))
}

func TestGateway_RequestsAreIndependent(t *testing.T) {
	gw := newTestGateway(nil)

	first := gw.Purchase(PurchaseOptions{Amount: 1})
	first.SetTransactionID("a")
	first.SetTestMode(false)

	second := gw.Purchase(PurchaseOptions{Amount: 1})
	data, err := second.Data()
	require.NoError(t, err)

	assert.Nil(t, data["MerchantTrns"])
	assert.True(t, second.TestMode())
}
