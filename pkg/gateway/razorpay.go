package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RazorpayClient talks to the Razorpay REST API directly (basic auth over
// HTTPS). Payouts use the RazorpayX endpoints and draw from AccountNumber.
type RazorpayClient struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	AccountNumber string
	client        *http.Client
}

func NewRazorpayClient(baseURL, keyID, keySecret, webhookSecret, accountNumber string) *RazorpayClient {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	return &RazorpayClient{
		BaseURL:       baseURL,
		KeyID:         keyID,
		KeySecret:     keySecret,
		WebhookSecret: webhookSecret,
		AccountNumber: accountNumber,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (p *RazorpayClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(p.KeyID, p.KeySecret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr razorpayError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("razorpay %s %s: %s (%s)", method, path, apiErr.Error.Description, apiErr.Error.Code)
		}
		return fmt.Errorf("razorpay %s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func (p *RazorpayClient) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*Order, error) {
	payload := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		payload["notes"] = notes
	}
	var out razorpayOrder
	if err := p.do(ctx, http.MethodPost, "/v1/orders", payload, &out); err != nil {
		return nil, err
	}
	return &Order{ID: out.ID, AmountPaise: out.Amount, Currency: out.Currency, Receipt: out.Receipt, Status: out.Status}, nil
}

type razorpayPayment struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
}

func (p *RazorpayClient) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var out razorpayPayment
	if err := p.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &out); err != nil {
		return nil, err
	}
	return &Payment{ID: out.ID, OrderID: out.OrderID, AmountPaise: out.Amount, Currency: out.Currency, Status: out.Status, Method: out.Method}, nil
}

type razorpayRefund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

func (p *RazorpayClient) CreateRefund(ctx context.Context, paymentID string, amountPaise int64, notes map[string]string) (*Refund, error) {
	payload := map[string]interface{}{"amount": amountPaise}
	if len(notes) > 0 {
		payload["notes"] = notes
	}
	var out razorpayRefund
	if err := p.do(ctx, http.MethodPost, "/v1/payments/"+paymentID+"/refund", payload, &out); err != nil {
		return nil, err
	}
	return &Refund{ID: out.ID, PaymentID: out.PaymentID, AmountPaise: out.Amount, Status: out.Status}, nil
}

func (p *RazorpayClient) CreateContact(ctx context.Context, name, email, phone, referenceID string) (string, error) {
	payload := map[string]interface{}{
		"name":         name,
		"email":        email,
		"contact":      phone,
		"type":         "customer",
		"reference_id": referenceID,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := p.do(ctx, http.MethodPost, "/v1/contacts", payload, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (p *RazorpayClient) CreateFundAccount(ctx context.Context, contactID string, bank BankAccount) (string, error) {
	payload := map[string]interface{}{
		"contact_id":   contactID,
		"account_type": "bank_account",
		"bank_account": bank,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := p.do(ctx, http.MethodPost, "/v1/fund_accounts", payload, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

type razorpayPayout struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
	UTR    string `json:"utr"`
}

func (p *RazorpayClient) CreatePayout(ctx context.Context, in PayoutInput) (*Payout, error) {
	payload := map[string]interface{}{
		"account_number":       p.AccountNumber,
		"fund_account_id":      in.FundAccountID,
		"amount":               in.AmountPaise,
		"currency":             in.Currency,
		"mode":                 in.Mode,
		"purpose":              in.Purpose,
		"reference_id":         in.ReferenceID,
		"queue_if_low_balance": true,
	}
	var out razorpayPayout
	if err := p.do(ctx, http.MethodPost, "/v1/payouts", payload, &out); err != nil {
		return nil, err
	}
	return &Payout{ID: out.ID, AmountPaise: out.Amount, Status: out.Status, UTR: out.UTR}, nil
}

// VerifyPaymentSignature checks the checkout callback signature, computed by
// the gateway as HMAC-SHA256 over "orderId|paymentId" with the key secret.
func (p *RazorpayClient) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return VerifyHMAC(p.KeySecret, orderID+"|"+paymentID, signature)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header, computed as
// HMAC-SHA256 over the raw JSON body with the webhook secret.
func (p *RazorpayClient) VerifyWebhookSignature(body []byte, signature string) bool {
	return VerifyHMAC(p.WebhookSecret, string(body), signature)
}
