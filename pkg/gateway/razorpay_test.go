package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyHMAC(t *testing.T) {
	sig := SignHMAC("secret", "order_1|pay_1")
	assert.Len(t, sig, 64) // hex sha256
	assert.True(t, VerifyHMAC("secret", "order_1|pay_1", sig))
	assert.False(t, VerifyHMAC("secret", "order_1|pay_2", sig))
	assert.False(t, VerifyHMAC("other", "order_1|pay_1", sig))
	assert.False(t, VerifyHMAC("secret", "order_1|pay_1", ""))
}

func TestVerifyPaymentSignature(t *testing.T) {
	c := NewRazorpayClient("", "key", "keysecret", "whsecret", "acc")
	sig := SignHMAC("keysecret", "order_9|pay_9")
	assert.True(t, c.VerifyPaymentSignature("order_9", "pay_9", sig))
	assert.False(t, c.VerifyPaymentSignature("order_9", "pay_9", "deadbeef"))
	assert.False(t, c.VerifyPaymentSignature("order_8", "pay_9", sig))
}

func TestVerifyWebhookSignature(t *testing.T) {
	c := NewRazorpayClient("", "key", "keysecret", "whsecret", "acc")
	body := []byte(`{"event":"payment.captured"}`)
	sig := SignHMAC("whsecret", string(body))
	assert.True(t, c.VerifyWebhookSignature(body, sig))
	assert.False(t, c.VerifyWebhookSignature([]byte(`{"event":"tampered"}`), sig))
	// Webhooks sign with the webhook secret, not the key secret.
	assert.False(t, c.VerifyWebhookSignature(body, SignHMAC("keysecret", string(body))))
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(50000), payload["amount"])
		assert.Equal(t, "INR", payload["currency"])
		assert.Equal(t, "topup-abc", payload["receipt"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_srv1",
			"amount":   50000,
			"currency": "INR",
			"receipt":  "topup-abc",
			"status":   "created",
		})
	}))
	defer srv.Close()

	c := NewRazorpayClient(srv.URL, "key_id", "key_secret", "wh", "acc")
	order, err := c.CreateOrder(context.Background(), 50000, "INR", "topup-abc", map[string]string{"user_id": "7"})
	require.NoError(t, err)
	assert.Equal(t, "order_srv1", order.ID)
	assert.Equal(t, int64(50000), order.AmountPaise)
	assert.Equal(t, "created", order.Status)
}

func TestCreatePayoutSendsAccountNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payouts", r.URL.Path)
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "2323230099089860", payload["account_number"])
		assert.Equal(t, "fa_77", payload["fund_account_id"])
		assert.Equal(t, "IMPS", payload["mode"])
		assert.Equal(t, "payout_42", payload["reference_id"])
		assert.Equal(t, true, payload["queue_if_low_balance"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "pout_srv1",
			"amount": 300000,
			"status": "processed",
			"utr":    "UTR0001",
		})
	}))
	defer srv.Close()

	c := NewRazorpayClient(srv.URL, "key_id", "key_secret", "wh", "2323230099089860")
	payout, err := c.CreatePayout(context.Background(), PayoutInput{
		FundAccountID: "fa_77",
		AmountPaise:   300000,
		Currency:      "INR",
		Mode:          "IMPS",
		Purpose:       "payout",
		ReferenceID:   "payout_42",
	})
	require.NoError(t, err)
	assert.Equal(t, "pout_srv1", payout.ID)
	assert.Equal(t, "processed", payout.Status)
	assert.Equal(t, "UTR0001", payout.UTR)
}

func TestAPIErrorsSurfaceDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"code":        "BAD_REQUEST_ERROR",
				"description": "The amount must be at least INR 1.00",
			},
		})
	}))
	defer srv.Close()

	c := NewRazorpayClient(srv.URL, "key_id", "key_secret", "wh", "acc")
	_, err := c.CreateOrder(context.Background(), 1, "INR", "r", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The amount must be at least INR 1.00")
	assert.Contains(t, err.Error(), "BAD_REQUEST_ERROR")
}

func TestFetchPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/pay_55", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "pay_55",
			"order_id": "order_55",
			"amount":   12300,
			"currency": "INR",
			"status":   "captured",
			"method":   "upi",
		})
	}))
	defer srv.Close()

	c := NewRazorpayClient(srv.URL, "key_id", "key_secret", "wh", "acc")
	p, err := c.FetchPayment(context.Background(), "pay_55")
	require.NoError(t, err)
	assert.Equal(t, "captured", p.Status)
	assert.Equal(t, int64(12300), p.AmountPaise)
	assert.Equal(t, "upi", p.Method)
}
