package database

import (
	"log"
	"os"
	"time"

	"bazario/internal/domain"
	"bazario/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the bootstrap admin account if no admin exists yet.
func SeedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Printf("[Seed] ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[Seed] bcrypt: %v", err)
		return
	}
	now := time.Now()
	admin := models.User{
		Name:            "Admin",
		Email:           email,
		PasswordHash:    string(hash),
		Role:            domain.RoleAdmin,
		KYCStatus:       domain.KYCVerified,
		EmailVerifiedAt: &now,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("[Seed] admin create failed: %v", err)
		return
	}
	log.Printf("[Seed] admin %s created", email)
}

// SeedBoostPlans inserts the default boost plans when the table is empty.
func SeedBoostPlans(db *gorm.DB) {
	var count int64
	db.Model(&models.BoostPlan{}).Count(&count)
	if count > 0 {
		return
	}
	plans := []models.BoostPlan{
		{Name: "boost-3d", PricePaise: 9900, DurationDays: 3},
		{Name: "boost-7d", PricePaise: 24900, DurationDays: 7},
		{Name: "boost-30d", PricePaise: 79900, DurationDays: 30},
		{Name: "feature-7d", PricePaise: 49900, DurationDays: 7, IsFeature: true},
	}
	for i := range plans {
		plans[i].IsActive = true
	}
	if err := db.Create(&plans).Error; err != nil {
		log.Printf("[Seed] boost plans failed: %v", err)
		return
	}
	log.Printf("[Seed] %d boost plans created", len(plans))
}
