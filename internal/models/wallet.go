package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet holds a user's spendable and held funds in paise. Balances are only
// mutated inside a database transaction that also appends a WalletTransaction.
type Wallet struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	BalancePaise      int64          `gorm:"not null;default:0" json:"balance_paise"`
	HoldBalancePaise  int64          `gorm:"not null;default:0" json:"hold_balance_paise"` // reserved for in-flight payouts
	TotalCreditsPaise int64          `gorm:"not null;default:0" json:"total_credits_paise"`
	TotalDebitsPaise  int64          `gorm:"not null;default:0" json:"total_debits_paise"`
	Currency          string         `gorm:"size:3;default:'INR'" json:"currency"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}
