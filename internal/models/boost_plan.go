package models

import (
	"time"

	"gorm.io/gorm"
)

// BoostPlan is immutable pricing reference data for listing promotion.
type BoostPlan struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:64;uniqueIndex;not null" json:"name"`
	PricePaise   int64          `gorm:"not null" json:"price_paise"`
	DurationDays int            `gorm:"not null" json:"duration_days"`
	IsFeature    bool           `gorm:"default:false" json:"is_feature"` // feature = pinned on homepage, boost = raised in search
	IsActive     bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BoostPlan) TableName() string {
	return "boost_plans"
}
