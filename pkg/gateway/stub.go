package gateway

import (
	"context"
	"fmt"
	"sync/atomic"
)

// StubClient is a no-op gateway for development and tests. Every operation
// succeeds and signature checks accept anything unless FailNext is set.
type StubClient struct {
	seq          atomic.Int64
	FailNext     bool
	RefundStatus string // defaults to "processed"
	PayoutStatus string // defaults to "processed"
}

func (s *StubClient) next(prefix string) string {
	return fmt.Sprintf("%s_stub%06d", prefix, s.seq.Add(1))
}

func (s *StubClient) fail() error {
	if s.FailNext {
		s.FailNext = false
		return fmt.Errorf("stub gateway: simulated failure")
	}
	return nil
}

func (s *StubClient) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (*Order, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	return &Order{ID: s.next("order"), AmountPaise: amountPaise, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

func (s *StubClient) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	return &Payment{ID: paymentID, Status: "captured", Currency: "INR"}, nil
}

func (s *StubClient) CreateRefund(ctx context.Context, paymentID string, amountPaise int64, notes map[string]string) (*Refund, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	status := s.RefundStatus
	if status == "" {
		status = "processed"
	}
	return &Refund{ID: s.next("rfnd"), PaymentID: paymentID, AmountPaise: amountPaise, Status: status}, nil
}

func (s *StubClient) CreateContact(ctx context.Context, name, email, phone, referenceID string) (string, error) {
	if err := s.fail(); err != nil {
		return "", err
	}
	return s.next("cont"), nil
}

func (s *StubClient) CreateFundAccount(ctx context.Context, contactID string, bank BankAccount) (string, error) {
	if err := s.fail(); err != nil {
		return "", err
	}
	return s.next("fa"), nil
}

func (s *StubClient) CreatePayout(ctx context.Context, in PayoutInput) (*Payout, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	status := s.PayoutStatus
	if status == "" {
		status = "processed"
	}
	return &Payout{ID: s.next("pout"), AmountPaise: in.AmountPaise, Status: status}, nil
}

func (s *StubClient) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return signature != "bad"
}

func (s *StubClient) VerifyWebhookSignature(body []byte, signature string) bool {
	return signature != "bad"
}
