package repository

import (
	"bazario/internal/models"

	"gorm.io/gorm"
)

type TopupOrderRepository struct {
	db *gorm.DB
}

func NewTopupOrderRepository(db *gorm.DB) *TopupOrderRepository {
	return &TopupOrderRepository{db: db}
}

func (r *TopupOrderRepository) ListByUser(userID uint, limit, offset int) ([]models.TopupOrder, error) {
	var orders []models.TopupOrder
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	return orders, err
}
