package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/lab_management/internal/models"
)

type DashboardCounts struct {
	ActiveProjects   int64 `json:"active_projects"`
	LowStockReagents int64 `json:"low_stock_reagents"`
	TodaysBookings   int64 `json:"todays_bookings"`
	PendingOrders    int64 `json:"pending_orders"`
}

func (r *GormRepo) DashboardCounts(ctx context.Context, now time.Time) (*DashboardCounts, error) {
	var counts DashboardCounts
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.Project{}).
		Where("status = ?", models.ProjectActive).
		Count(&counts.ActiveProjects).Error; err != nil {
		return nil, storageErr(err)
	}

	if err := db.Model(&models.Reagent{}).
		Where("quantity <= min_quantity").
		Count(&counts.LowStockReagents).Error; err != nil {
		return nil, storageErr(err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)
	if err := db.Model(&models.Booking{}).
		Where("status <> ?", models.BookingCancelled).
		Where("start_time >= ? AND start_time < ?", dayStart, dayEnd).
		Count(&counts.TodaysBookings).Error; err != nil {
		return nil, storageErr(err)
	}

	if err := db.Model(&models.Order{}).
		Where("status IN ?", []models.OrderStatus{models.OrderRequested, models.OrderApproved}).
		Count(&counts.PendingOrders).Error; err != nil {
		return nil, storageErr(err)
	}

	return &counts, nil
}

func (r *GormRepo) RecentBookings(ctx context.Context, from time.Time, limit int) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.DB.WithContext(ctx).
		Where("status <> ? AND start_time >= ?", models.BookingCancelled, from).
		Order("start_time ASC").
		Limit(limit).
		Find(&bookings).Error; err != nil {
		return nil, storageErr(err)
	}
	return bookings, nil
}
