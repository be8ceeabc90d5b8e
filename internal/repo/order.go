package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_management/internal/apperrors"
	"github.com/Skotchmaster/lab_management/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return storageErr(r.DB.WithContext(ctx).Create(o).Error)
}

func (r *GormRepo) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, storageErr(err)
	}
	return &o, nil
}

type OrderFilter struct {
	Status        models.OrderStatus
	RequestedByID string
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RequestedByID != "" {
		q = q.Where("requested_by_id = ?", f.RequestedByID)
	}
	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, storageErr(err)
	}
	return orders, nil
}

func (r *GormRepo) SaveOrder(ctx context.Context, o *models.Order) error {
	return storageErr(r.DB.WithContext(ctx).Save(o).Error)
}

// ReceiveOrder marks the order received and, when it is linked to a reagent,
// adds the ordered quantity to stock in the same transaction.
func (r *GormRepo) ReceiveOrder(ctx context.Context, o *models.Order) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(o).Error; err != nil {
			return err
		}
		if o.ReagentID == nil {
			return nil
		}
		var reagent models.Reagent
		if err := tx.Where("id = ?", *o.ReagentID).First(&reagent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		reagent.Quantity += o.Quantity
		return tx.Save(&reagent).Error
	})
	return storageErr(err)
}
