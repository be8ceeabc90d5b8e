package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_management/internal/apperrors"
	"github.com/Skotchmaster/lab_management/internal/models"
	"github.com/Skotchmaster/lab_management/internal/repo"
)

func newTestBookingService(t *testing.T) *BookingService {
	t.Helper()

	clock := newTestClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	return &BookingService{
		Repo: &repo.GormRepo{DB: InitTestDB(t)},
		Now:  clock.Now,
	}
}

func seedEquipment(t *testing.T, db *gorm.DB) *models.Equipment {
	t.Helper()

	eq := &models.Equipment{
		ID:           uuid.NewString(),
		Name:         "Confocal Microscope",
		SerialNumber: "sn_" + uuid.NewString(),
		IsAvailable:  true,
	}
	require.NoError(t, db.Create(eq).Error)
	return eq
}

func slot(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func TestBookingService_CreateBooking_AdjacentSlotsSucceed(t *testing.T) {
	t.Parallel()

	svc := newTestBookingService(t)
	eq := seedEquipment(t, svc.Repo.DB)
	ctx := context.Background()

	first, err := svc.CreateBooking(ctx, CreateBookingInput{
		EquipmentID: eq.ID,
		UserID:      "alice",
		StartTime:   slot(9, 0),
		EndTime:     slot(10, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingScheduled, first.Status)

	_, err = svc.CreateBooking(ctx, CreateBookingInput{
		EquipmentID: eq.ID,
		UserID:      "bob",
		StartTime:   slot(9, 30),
		EndTime:     slot(10, 30),
	})
	require.Error(t, err)
	conflict, ok := apperrors.AsConflict(err)
	require.True(t, ok, "expected ConflictError, got %v", err)
	require.Len(t, conflict.Bookings, 1)
	assert.Equal(t, first.ID, conflict.Bookings[0].ID)

	_, err = svc.CreateBooking(ctx, CreateBookingInput{
		EquipmentID: eq.ID,
		UserID:      "bob",
		StartTime:   slot(10, 0),
		EndTime:     slot(11, 0),
	})
	require.NoError(t, err, "back-to-back slots must not conflict")
}

func TestBookingService_CreateBooking_InvalidInterval(t *testing.T) {
	t.Parallel()

	svc := newTestBookingService(t)
	eq := seedEquipment(t, svc.Repo.DB)
	ctx := context.Background()

	tests := []struct {
		name       string
		start, end time.Time
	}{
		{name: "zero length", start: slot(9, 0), end: slot(9, 0)},
		{name: "end before start", start: slot(10, 0), end: slot(9, 0)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateBooking(ctx, CreateBookingInput{
				EquipmentID: eq.ID,
				UserID:      "alice",
				StartTime:   tt.start,
				EndTime:     tt.end,
			})
			assert.ErrorIs(t, err, apperrors.ErrInvalidInterval)
		})
	}
}

func TestBookingService_CreateBooking_UnknownEquipment(t *testing.T) {
	t.Parallel()

	svc := newTestBookingService(t)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, CreateBookingInput{
		EquipmentID: uuid.NewString(),
		UserID:      "alice",
		StartTime:   slot(9, 0),
		EndTime:     slot(10, 0),
	})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestBookingService_CancelThenRebook(t *testing.T) {
	t.Parallel()

	svc := newTestBookingService(t)
	eq := seedEquipment(t, svc.Repo.DB)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, CreateBookingInput{
		EquipmentID: eq.ID,
		UserID:      "alice",
		StartTime:   slot(9, 0),
		EndTime:     slot(10, 0),
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)

	again, err := svc.CancelBooking(ctx, booking.ID)
	require.NoError(t, err, "cancelling twice must be a no-op")
	assert.Equal(t, models.BookingCancelled, again.Status)

	_, err = svc.CreateBooking(ctx, CreateBookingInput{
		EquipmentID: eq.ID,
		UserID:      "bob",
		StartTime:   slot(9, 0),
		EndTime:     slot(10, 0),
	})
	require.NoError(t, err, "cancelled booking must free its slot")
}

func TestBookingService_UpdateBooking_ExcludesItself(t *testing.T) {
	t.Parallel()

	svc := newTestBookingService(t)
	eq := seedEquipment(t, svc.Repo.DB)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, CreateBookingInput{
		EquipmentID: eq.ID,
		UserID:      "alice",
		StartTime:   slot(9, 0),
		EndTime:     slot(10, 0),
	})
	require.NoError(t, err)

	newStart := slot(9, 15)
	newEnd := slot(10, 15)
	updated, err := svc.UpdateBooking(ctx, booking.ID, UpdateBookingInput{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	require.NoError(t, err, "a booking must not conflict with itself")
	assert.Equal(t, newStart, updated.StartTime)
	assert.Equal(t, newEnd, updated.EndTime)
}

func TestBookingService_UpdateBooking_ConflictWithNeighbor(t *testing.T) {
	t.Parallel()

	svc := newTestBookingService(t)
	eq := seedEquipment(t, svc.Repo.DB)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, CreateBookingInput{
		EquipmentID: eq.ID,
		UserID:      "alice",
		StartTime:   slot(9, 0),
		EndTime:     slot(10, 0),
	})
	require.NoError(t, err)

	neighbor, err := svc.CreateBooking(ctx, CreateBookingInput{
		EquipmentID: eq.ID,
		UserID:      "bob",
		StartTime:   slot(10, 0),
		EndTime:     slot(11, 0),
	})
	require.NoError(t, err)

	newEnd := slot(10, 45)
	_, err = svc.UpdateBooking(ctx, neighbor.ID, UpdateBookingInput{EndTime: &newEnd})
	require.NoError(t, err, "shrinking inside own window is fine")

	newStart := slot(9, 45)
	_, err = svc.UpdateBooking(ctx, neighbor.ID, UpdateBookingInput{StartTime: &newStart})
	require.Error(t, err)
	_, ok := apperrors.AsConflict(err)
	assert.True(t, ok, "expected ConflictError, got %v", err)
}

func TestBookingService_UpdateBooking_StatusTransitions(t *testing.T) {
	t.Parallel()

	svc := newTestBookingService(t)
	eq := seedEquipment(t, svc.Repo.DB)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, CreateBookingInput{
		EquipmentID: eq.ID,
		UserID:      "alice",
		StartTime:   slot(9, 0),
		EndTime:     slot(10, 0),
	})
	require.NoError(t, err)

	inProgress := models.BookingInProgress
	_, err = svc.UpdateBooking(ctx, booking.ID, UpdateBookingInput{Status: &inProgress})
	require.NoError(t, err)

	completed := models.BookingCompleted
	_, err = svc.UpdateBooking(ctx, booking.ID, UpdateBookingInput{Status: &completed})
	require.NoError(t, err)

	scheduled := models.BookingScheduled
	_, err = svc.UpdateBooking(ctx, booking.ID, UpdateBookingInput{Status: &scheduled})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition, "completed is terminal")
}

func TestBookingService_CheckConflict_ReadOnly(t *testing.T) {
	t.Parallel()

	svc := newTestBookingService(t)
	eq := seedEquipment(t, svc.Repo.DB)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, CreateBookingInput{
		EquipmentID: eq.ID,
		UserID:      "alice",
		StartTime:   slot(9, 0),
		EndTime:     slot(10, 0),
	})
	require.NoError(t, err)

	conflicts, err := svc.CheckConflict(ctx, eq.ID, slot(9, 30), slot(10, 30), "")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, booking.ID, conflicts[0].ID)

	conflicts, err = svc.CheckConflict(ctx, eq.ID, slot(9, 30), slot(10, 30), booking.ID)
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	_, err = svc.CheckConflict(ctx, eq.ID, slot(10, 0), slot(9, 0), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInterval)
}

func TestBookingService_RandomIntervals_NoAcceptedOverlap(t *testing.T) {
	t.Parallel()

	svc := newTestBookingService(t)
	eq := seedEquipment(t, svc.Repo.DB)
	ctx := context.Background()

	rng := rand.New(rand.NewSource(42))
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	var accepted []models.Booking
	for i := 0; i < 60; i++ {
		start := day.Add(time.Duration(rng.Intn(20*4)) * 15 * time.Minute)
		end := start.Add(time.Duration(1+rng.Intn(12)) * 15 * time.Minute)

		booking, err := svc.CreateBooking(ctx, CreateBookingInput{
			EquipmentID: eq.ID,
			UserID:      "user",
			StartTime:   start,
			EndTime:     end,
		})
		if err != nil {
			_, ok := apperrors.AsConflict(err)
			require.True(t, ok, "only conflicts may reject a valid interval, got %v", err)
			continue
		}
		accepted = append(accepted, *booking)
	}
	require.NotEmpty(t, accepted)

	for i := range accepted {
		for j := i + 1; j < len(accepted); j++ {
			a, b := accepted[i], accepted[j]
			assert.False(t,
				a.StartTime.Before(b.EndTime) && b.StartTime.Before(a.EndTime),
				"accepted bookings [%v,%v) and [%v,%v) overlap",
				a.StartTime, a.EndTime, b.StartTime, b.EndTime)
		}
	}
}

func TestBookingService_ConcurrentSameSlot_OneWins(t *testing.T) {
	t.Parallel()

	svc := newTestBookingService(t)
	eq := seedEquipment(t, svc.Repo.DB)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(ctx, CreateBookingInput{
				EquipmentID: eq.ID,
				UserID:      "user",
				StartTime:   slot(14, 0),
				EndTime:     slot(15, 0),
			})
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		_, ok := apperrors.AsConflict(err)
		require.True(t, ok, "loser must get ConflictError, got %v", err)
		lost++
	}
	assert.Equal(t, 1, won, "exactly one concurrent request may book the slot")
	assert.Equal(t, workers-1, lost)

	var count int64
	require.NoError(t, svc.Repo.DB.Model(&models.Booking{}).
		Where("equipment_id = ? AND status <> ?", eq.ID, models.BookingCancelled).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
