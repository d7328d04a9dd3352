package repository

import (
	"time"

	"bazario/internal/models"

	"gorm.io/gorm"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(l *models.Listing) error {
	return r.db.Create(l).Error
}

func (r *ListingRepository) GetByID(id uint) (*models.Listing, error) {
	var l models.Listing
	if err := r.db.First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepository) ListByUser(userID uint, limit, offset int) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&listings).Error
	return listings, err
}

// ExpireBoosts clears the boost flag on listings whose boost has lapsed.
// Called periodically; not part of any money movement.
func (r *ListingRepository) ExpireBoosts() (int64, error) {
	res := r.db.Model(&models.Listing{}).
		Where("is_boosted = ? AND boost_expires_at < ?", true, time.Now()).
		Updates(map[string]interface{}{"is_boosted": false, "is_featured": false})
	return res.RowsAffected, res.Error
}
