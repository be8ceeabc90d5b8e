package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_management/internal/apperrors"
	"github.com/Skotchmaster/lab_management/internal/models"
)

func (r *GormRepo) CreateEquipment(ctx context.Context, e *models.Equipment) error {
	return storageErr(r.DB.WithContext(ctx).Create(e).Error)
}

func (r *GormRepo) GetEquipment(ctx context.Context, id string) (*models.Equipment, error) {
	var e models.Equipment
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, storageErr(err)
	}
	return &e, nil
}

func (r *GormRepo) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	var items []models.Equipment
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, storageErr(err)
	}
	return items, nil
}

func (r *GormRepo) SaveEquipment(ctx context.Context, e *models.Equipment) error {
	return storageErr(r.DB.WithContext(ctx).Save(e).Error)
}

func (r *GormRepo) DeleteEquipment(ctx context.Context, id string) error {
	return storageErr(r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Equipment{}).Error)
}
