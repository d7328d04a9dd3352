package models

import (
	"time"

	"gorm.io/gorm"
)

// TopupOrder is a gateway order created for a wallet top-up. The wallet is
// credited only after the payment against this order is verified or captured.
type TopupOrder struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	GatewayOrderID string         `gorm:"size:64;uniqueIndex;not null" json:"gateway_order_id"`
	AmountPaise    int64          `gorm:"not null" json:"amount_paise"`
	Currency       string         `gorm:"size:3;default:'INR'" json:"currency"`
	Status         string         `gorm:"size:20;not null;index" json:"status"` // CREATED, PAID, FAILED
	Receipt        string         `gorm:"size:64" json:"receipt"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (TopupOrder) TableName() string {
	return "topup_orders"
}
