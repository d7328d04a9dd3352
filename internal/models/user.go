package models

import (
	"time"

	"bazario/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:128;not null" json:"name"`
	Email           string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone           string         `gorm:"size:20;index" json:"phone"`
	PasswordHash    string         `gorm:"size:255" json:"-"`
	Role            string         `gorm:"size:20;not null;index" json:"role"` // USER | ADMIN
	KYCStatus       string         `gorm:"size:20;not null;default:'PENDING'" json:"kyc_status"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Wallet *Wallet `gorm:"foreignKey:UserID" json:"wallet,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool       { return u.Role == domain.RoleAdmin }
func (u *User) KYCVerified() bool   { return u.KYCStatus == domain.KYCVerified }
func (u *User) EmailVerified() bool { return u.EmailVerifiedAt != nil }
