package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_management/internal/models"
)

func (r *GormRepo) CreateRefreshToken(ctx context.Context, rt *models.RefreshToken) error {
	return storageErr(r.DB.WithContext(ctx).Create(rt).Error)
}

// FindRefreshToken returns (nil, nil) when no record exists for the token
// string; absence is a domain outcome, not a storage failure.
func (r *GormRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageErr(err)
	}
	return &rt, nil
}

// DeleteRefreshToken removes the record and reports how many rows went away.
// The affected-row count is the serialization point for concurrent rotations:
// only one caller observes 1.
func (r *GormRepo) DeleteRefreshToken(ctx context.Context, token string) (int64, error) {
	tx := r.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{})
	if tx.Error != nil {
		return 0, storageErr(tx.Error)
	}
	return tx.RowsAffected, nil
}

// DeleteExpiredRefreshTokens sweeps rows whose expiry has passed. Expired rows
// are already treated as invalid; this only reclaims space.
func (r *GormRepo) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	tx := r.DB.WithContext(ctx).Where("expires_at < ?", before).Delete(&models.RefreshToken{})
	if tx.Error != nil {
		return 0, storageErr(tx.Error)
	}
	return tx.RowsAffected, nil
}
