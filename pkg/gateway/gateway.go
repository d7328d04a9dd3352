package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Order is a gateway order awaiting payment capture.
type Order struct {
	ID          string
	AmountPaise int64
	Currency    string
	Receipt     string
	Status      string
}

// Payment is a captured or failed payment against an order.
type Payment struct {
	ID          string
	OrderID     string
	AmountPaise int64
	Currency    string
	Status      string // created, authorized, captured, refunded, failed
	Method      string
}

type Refund struct {
	ID          string
	PaymentID   string
	AmountPaise int64
	Status      string // created, processed, failed
}

type Payout struct {
	ID          string
	AmountPaise int64
	Status      string // queued, processing, processed, reversed, failed
	UTR         string
}

// BankAccount identifies the beneficiary for a payout.
type BankAccount struct {
	HolderName    string `json:"name"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
}

// PayoutInput describes a bank payout drawn from the merchant account.
type PayoutInput struct {
	FundAccountID string
	AmountPaise   int64
	Currency      string
	Mode          string // IMPS, NEFT, UPI
	Purpose       string
	ReferenceID   string
}

// Client wraps the payment gateway operations the ledger depends on.
type Client interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
	CreateRefund(ctx context.Context, paymentID string, amountPaise int64, notes map[string]string) (*Refund, error)
	CreateContact(ctx context.Context, name, email, phone, referenceID string) (string, error)
	CreateFundAccount(ctx context.Context, contactID string, bank BankAccount) (string, error)
	CreatePayout(ctx context.Context, in PayoutInput) (*Payout, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
}

// SignHMAC returns the hex HMAC-SHA256 of message under secret. The gateway
// signs payment verifications over "orderId|paymentId" and webhooks over the
// raw JSON body.
func SignHMAC(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC compares signatures in constant time.
func VerifyHMAC(secret, message, signature string) bool {
	expected := SignHMAC(secret, message)
	return hmac.Equal([]byte(expected), []byte(signature))
}
