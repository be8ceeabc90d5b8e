package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_management/internal/apperrors"
	"github.com/Skotchmaster/lab_management/internal/models"
	"github.com/Skotchmaster/lab_management/internal/scheduler"
)

// ActiveBookings returns every non-cancelled booking for the equipment,
// minus the excluded one when excludeID is set.
func (r *GormRepo) ActiveBookings(ctx context.Context, equipmentID, excludeID string) ([]models.Booking, error) {
	q := r.DB.WithContext(ctx).
		Where("equipment_id = ? AND status <> ?", equipmentID, models.BookingCancelled)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, storageErr(err)
	}
	return bookings, nil
}

// CreateBookingIfFree re-runs the overlap check and inserts the booking in a
// single transaction, so the check and the write commit as one unit.
func (r *GormRepo) CreateBookingIfFree(ctx context.Context, b *models.Booking) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Booking
		if err := tx.Where("equipment_id = ? AND status <> ?", b.EquipmentID, models.BookingCancelled).
			Find(&existing).Error; err != nil {
			return err
		}
		if conflicts := scheduler.FindConflicts(existing, b.StartTime, b.EndTime, ""); len(conflicts) > 0 {
			return &apperrors.ConflictError{Bookings: conflicts}
		}
		return tx.Create(b).Error
	})
	if _, ok := apperrors.AsConflict(err); ok {
		return err
	}
	return storageErr(err)
}

// UpdateBookingIfFree saves the booking after re-validating its interval
// against every other active booking on the same equipment.
func (r *GormRepo) UpdateBookingIfFree(ctx context.Context, b *models.Booking) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Booking
		if err := tx.Where("equipment_id = ? AND status <> ?", b.EquipmentID, models.BookingCancelled).
			Find(&existing).Error; err != nil {
			return err
		}
		if conflicts := scheduler.FindConflicts(existing, b.StartTime, b.EndTime, b.ID); len(conflicts) > 0 {
			return &apperrors.ConflictError{Bookings: conflicts}
		}
		return tx.Save(b).Error
	})
	if _, ok := apperrors.AsConflict(err); ok {
		return err
	}
	return storageErr(err)
}

func (r *GormRepo) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, storageErr(err)
	}
	return &b, nil
}

func (r *GormRepo) SaveBooking(ctx context.Context, b *models.Booking) error {
	return storageErr(r.DB.WithContext(ctx).Save(b).Error)
}

type BookingFilter struct {
	EquipmentID string
	UserID      string
	From        *time.Time
	To          *time.Time
}

func (r *GormRepo) ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	q := r.DB.WithContext(ctx).Model(&models.Booking{})
	if f.EquipmentID != "" {
		q = q.Where("equipment_id = ?", f.EquipmentID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.From != nil {
		q = q.Where("start_time >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_time <= ?", *f.To)
	}
	var bookings []models.Booking
	if err := q.Order("start_time ASC").Find(&bookings).Error; err != nil {
		return nil, storageErr(err)
	}
	return bookings, nil
}

// EquipmentSchedule returns the non-cancelled bookings of one piece of
// equipment inside a window, ordered by start.
func (r *GormRepo) EquipmentSchedule(ctx context.Context, equipmentID string, from, to time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.DB.WithContext(ctx).
		Where("equipment_id = ? AND status <> ?", equipmentID, models.BookingCancelled).
		Where("start_time >= ? AND start_time <= ?", from, to).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return bookings, nil
}
