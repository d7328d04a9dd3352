package repository

import (
	"bazario/internal/models"

	"gorm.io/gorm"
)

type BoostPlanRepository struct {
	db *gorm.DB
}

func NewBoostPlanRepository(db *gorm.DB) *BoostPlanRepository {
	return &BoostPlanRepository{db: db}
}

func (r *BoostPlanRepository) ListActive() ([]models.BoostPlan, error) {
	var plans []models.BoostPlan
	err := r.db.Where("is_active = ?", true).Order("price_paise ASC").Find(&plans).Error
	return plans, err
}

func (r *BoostPlanRepository) GetByID(id uint) (*models.BoostPlan, error) {
	var p models.BoostPlan
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
