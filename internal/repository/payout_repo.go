package repository

import (
	"bazario/internal/models"

	"gorm.io/gorm"
)

type PayoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) GetByID(id uint) (*models.PayoutRequest, error) {
	var p models.PayoutRequest
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) ListByUser(userID uint, limit, offset int) ([]models.PayoutRequest, error) {
	var payouts []models.PayoutRequest
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&payouts).Error
	return payouts, err
}

func (r *PayoutRepository) ListByStatus(status string, limit, offset int) ([]models.PayoutRequest, error) {
	var payouts []models.PayoutRequest
	q := r.db.Order("created_at ASC").Limit(limit).Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&payouts).Error
	return payouts, err
}
