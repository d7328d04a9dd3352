package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	KYCPending  = "PENDING"
	KYCVerified = "VERIFIED"
	KYCRejected = "REJECTED"
)

const (
	TxTypeCreditTopup  = "CREDIT_TOPUP"
	TxTypeDebitBoost   = "DEBIT_BOOST"
	TxTypeDebitFeature = "DEBIT_FEATURE"
	TxTypeDebitPayout  = "DEBIT_PAYOUT"
	TxTypeCreditRefund = "CREDIT_REFUND"
)

const (
	TxStatusPending   = "PENDING"
	TxStatusCompleted = "COMPLETED"
	TxStatusFailed    = "FAILED"
	TxStatusCancelled = "CANCELLED"
)

const (
	PayoutStatusPending    = "PENDING"
	PayoutStatusProcessing = "PROCESSING"
	PayoutStatusCompleted  = "COMPLETED"
	PayoutStatusRejected   = "REJECTED"
	PayoutStatusCancelled  = "CANCELLED"
	PayoutStatusFailed     = "FAILED"
)

const (
	TopupStatusCreated = "CREATED"
	TopupStatusPaid    = "PAID"
	TopupStatusFailed  = "FAILED"
)

const (
	ListingStatusActive  = "ACTIVE"
	ListingStatusSold    = "SOLD"
	ListingStatusRemoved = "REMOVED"
)

// WebSocket event names pushed to the owning user's session.
const (
	EventWalletUpdated    = "wallet:updated"
	EventWalletRefunded   = "wallet:refunded"
	EventPayoutRequested  = "payout:requested"
	EventPayoutProcessing = "payout:processing"
	EventPayoutRejected   = "payout:rejected"
)
