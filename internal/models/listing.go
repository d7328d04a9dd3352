package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Listing struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	PricePaise     int64          `gorm:"not null" json:"price_paise"`
	Status         string         `gorm:"size:20;not null;index" json:"status"` // ACTIVE, SOLD, REMOVED
	Images         datatypes.JSON `json:"images"`
	Attributes     datatypes.JSON `json:"attributes"`
	Location       datatypes.JSON `json:"location"`
	IsBoosted      bool           `gorm:"default:false;index" json:"is_boosted"`
	IsFeatured     bool           `gorm:"default:false;index" json:"is_featured"`
	BoostExpiresAt *time.Time     `gorm:"index" json:"boost_expires_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Listing) TableName() string {
	return "listings"
}

// BoostActive reports whether the listing currently has a live boost.
func (l *Listing) BoostActive(now time.Time) bool {
	return l.IsBoosted && l.BoostExpiresAt != nil && l.BoostExpiresAt.After(now)
}
