package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_management/internal/apperrors"
	"github.com/Skotchmaster/lab_management/internal/models"
)

func (r *GormRepo) CreateReagent(ctx context.Context, reagent *models.Reagent) error {
	return storageErr(r.DB.WithContext(ctx).Create(reagent).Error)
}

func (r *GormRepo) GetReagent(ctx context.Context, id string) (*models.Reagent, error) {
	var reagent models.Reagent
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&reagent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, storageErr(err)
	}
	return &reagent, nil
}

func (r *GormRepo) ListReagents(ctx context.Context) ([]models.Reagent, error) {
	var items []models.Reagent
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, storageErr(err)
	}
	return items, nil
}

func (r *GormRepo) ListLowStockReagents(ctx context.Context) ([]models.Reagent, error) {
	var items []models.Reagent
	if err := r.DB.WithContext(ctx).
		Where("quantity <= min_quantity").
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, storageErr(err)
	}
	return items, nil
}

func (r *GormRepo) ListExpiringReagents(ctx context.Context, before time.Time) ([]models.Reagent, error) {
	var items []models.Reagent
	if err := r.DB.WithContext(ctx).
		Where("expiration_date IS NOT NULL AND expiration_date <= ?", before).
		Order("expiration_date ASC").
		Find(&items).Error; err != nil {
		return nil, storageErr(err)
	}
	return items, nil
}

func (r *GormRepo) SaveReagent(ctx context.Context, reagent *models.Reagent) error {
	return storageErr(r.DB.WithContext(ctx).Save(reagent).Error)
}

func (r *GormRepo) DeleteReagent(ctx context.Context, id string) error {
	return storageErr(r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Reagent{}).Error)
}

// AdjustReagentQuantity changes the stock level by delta inside a transaction
// so concurrent adjustments never lose an update. The quantity never drops
// below zero.
func (r *GormRepo) AdjustReagentQuantity(ctx context.Context, id string, delta float64) (*models.Reagent, error) {
	var reagent models.Reagent
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&reagent).Error; err != nil {
			return err
		}
		reagent.Quantity += delta
		if reagent.Quantity < 0 {
			reagent.Quantity = 0
		}
		return tx.Save(&reagent).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, storageErr(err)
	}
	return &reagent, nil
}
