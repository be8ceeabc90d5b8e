package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_management/internal/apperrors"
	"github.com/Skotchmaster/lab_management/internal/models"
)

func (r *GormRepo) CreateProtocol(ctx context.Context, p *models.Protocol) error {
	return storageErr(r.DB.WithContext(ctx).Create(p).Error)
}

func (r *GormRepo) GetProtocol(ctx context.Context, id string) (*models.Protocol, error) {
	var p models.Protocol
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, storageErr(err)
	}
	return &p, nil
}

// ListProtocols returns protocols visible to the user: their own plus shared.
func (r *GormRepo) ListProtocols(ctx context.Context, userID string) ([]models.Protocol, error) {
	var protocols []models.Protocol
	if err := r.DB.WithContext(ctx).
		Where("author_id = ? OR is_shared = ?", userID, true).
		Order("updated_at DESC").
		Find(&protocols).Error; err != nil {
		return nil, storageErr(err)
	}
	return protocols, nil
}

func (r *GormRepo) SaveProtocol(ctx context.Context, p *models.Protocol) error {
	return storageErr(r.DB.WithContext(ctx).Save(p).Error)
}

func (r *GormRepo) DeleteProtocol(ctx context.Context, id string) error {
	return storageErr(r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Protocol{}).Error)
}
