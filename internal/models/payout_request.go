package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PayoutRequest tracks a withdrawal of held funds to the user's bank account.
// Lifecycle: PENDING -> PROCESSING -> COMPLETED, PROCESSING -> PENDING on
// gateway failure (hold preserved for retry), PENDING -> REJECTED/CANCELLED.
type PayoutRequest struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	UserID               uint           `gorm:"not null;index" json:"user_id"`
	AmountPaise          int64          `gorm:"not null" json:"amount_paise"`
	BankDetails          datatypes.JSON `gorm:"not null" json:"bank_details"` // account holder, account number, IFSC
	Status               string         `gorm:"size:20;not null;index" json:"status"`
	GatewayContactID     string         `gorm:"size:64" json:"gateway_contact_id"`
	GatewayFundAccountID string         `gorm:"size:64" json:"gateway_fund_account_id"`
	GatewayPayoutID      string         `gorm:"size:64;index" json:"gateway_payout_id"`
	FailureReason        string         `gorm:"size:512" json:"failure_reason"`
	ProcessedBy          *uint          `json:"processed_by"` // admin user id
	ProcessedAt          *time.Time     `json:"processed_at"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (PayoutRequest) TableName() string {
	return "payout_requests"
}
