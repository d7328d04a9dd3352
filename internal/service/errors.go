package service

import "errors"

// Ledger error values. Handlers map these to HTTP responses; none of them
// leave partial state behind.
var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInsufficientBalance    = errors.New("insufficient wallet balance")
	ErrDuplicatePayoutRequest = errors.New("a payout request is already outstanding")
	ErrKYCRequired            = errors.New("kyc verification required")
	ErrSignatureInvalid       = errors.New("gateway signature invalid")
	ErrGatewayFailed          = errors.New("gateway operation failed")
	ErrPayoutNotPending       = errors.New("payout is not in pending state")
	ErrRefundExceedsOriginal  = errors.New("refund exceeds refundable amount")
	ErrNotRefundable          = errors.New("transaction is not a refundable top-up")
	ErrNotListingOwner        = errors.New("listing does not belong to user")
	ErrOrderMismatch          = errors.New("payment does not match order")
)
