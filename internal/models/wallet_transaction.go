package models

import (
	"time"

	"bazario/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WalletTransaction is an append-only ledger entry. Rows are never rewritten
// after creation except to move Status to a terminal state as the matching
// gateway operation resolves.
type WalletTransaction struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             uint           `gorm:"not null;index" json:"user_id"`
	Type               string         `gorm:"size:30;not null;index" json:"type"` // CREDIT_TOPUP, DEBIT_BOOST, DEBIT_FEATURE, DEBIT_PAYOUT, CREDIT_REFUND
	AmountPaise        int64          `gorm:"not null" json:"amount_paise"`
	BalanceBeforePaise int64          `gorm:"not null" json:"balance_before_paise"`
	BalanceAfterPaise  int64          `gorm:"not null" json:"balance_after_paise"`
	Status             string         `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED, CANCELLED
	GatewayOrderID     string         `gorm:"size:64;index" json:"gateway_order_id"`
	GatewayPaymentID   *string        `gorm:"uniqueIndex;size:64" json:"gateway_payment_id"` // nil unless gateway-correlated (avoids duplicate '' on unique index)
	GatewayRefundID    string         `gorm:"size:64;index" json:"gateway_refund_id"`
	GatewayPayoutID    string         `gorm:"size:64;index" json:"gateway_payout_id"`
	PayoutRequestID    *uint          `gorm:"index" json:"payout_request_id"` // set on DEBIT_PAYOUT rows
	RefundOfID         *uint          `gorm:"index" json:"refund_of_id"`      // CREDIT_REFUND -> original CREDIT_TOPUP row
	Metadata           datatypes.JSON `json:"metadata"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

func (t *WalletTransaction) IsCredit() bool {
	return t.Type == domain.TxTypeCreditTopup || t.Type == domain.TxTypeCreditRefund
}
