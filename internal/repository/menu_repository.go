package repository

import (
	"errors"

	"canteen_preorder/internal/apperr"
	"canteen_preorder/internal/models"

	"gorm.io/gorm"
)

type MenuRepository interface {
	GetByID(id uint) (*models.MenuItem, error)
	GetAvailable() ([]models.MenuItem, error)
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) GetByID(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *menuRepository) GetAvailable() ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.Where("available = ?", true).Order("category, name").Find(&items).Error
	return items, err
}
