package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/lab_management/internal/apperrors"
	"github.com/Skotchmaster/lab_management/internal/logging"
	"github.com/Skotchmaster/lab_management/internal/models"
	"github.com/Skotchmaster/lab_management/internal/repo"
	"github.com/Skotchmaster/lab_management/internal/scheduler"
)

// EventPublisher is satisfied by mykafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// equipmentLocks serializes the check-then-write sequence per equipment so
// two concurrent requests cannot both observe "no conflict" and both insert.
type equipmentLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (e *equipmentLocks) get(equipmentID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locks == nil {
		e.locks = make(map[string]*sync.Mutex)
	}
	l, ok := e.locks[equipmentID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[equipmentID] = l
	}
	return l
}

type BookingService struct {
	Repo   *repo.GormRepo
	Events EventPublisher

	// Now is the injected clock; nil falls back to time.Now.
	Now func() time.Time

	locks equipmentLocks
}

func (s *BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *BookingService) publish(ctx context.Context, key string, event map[string]any) {
	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Events.PublishEvent(pubCtx, "booking_events", key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}

// CheckConflict reports every existing non-cancelled booking of the equipment
// overlapping [start, end). It is read-only; excludeBookingID is set when a
// booking is being modified so it does not conflict with itself.
func (s *BookingService) CheckConflict(ctx context.Context, equipmentID string, start, end time.Time, excludeBookingID string) ([]models.Booking, error) {
	if !start.Before(end) {
		return nil, apperrors.ErrInvalidInterval
	}
	if _, err := s.Repo.GetEquipment(ctx, equipmentID); err != nil {
		return nil, err
	}
	existing, err := s.Repo.ActiveBookings(ctx, equipmentID, excludeBookingID)
	if err != nil {
		return nil, err
	}
	return scheduler.FindConflicts(existing, start, end, excludeBookingID), nil
}

type CreateBookingInput struct {
	EquipmentID      string
	UserID           string
	StartTime        time.Time
	EndTime          time.Time
	Purpose          string
	Notes            string
	IsRecurring      bool
	RecurringPattern string
}

// CreateBooking validates the interval, then runs the conflict check and the
// insert as one unit under the equipment's lock.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if !in.StartTime.Before(in.EndTime) {
		return nil, apperrors.ErrInvalidInterval
	}
	if _, err := s.Repo.GetEquipment(ctx, in.EquipmentID); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:               uuid.NewString(),
		EquipmentID:      in.EquipmentID,
		UserID:           in.UserID,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		Status:           models.BookingScheduled,
		Purpose:          in.Purpose,
		Notes:            in.Notes,
		IsRecurring:      in.IsRecurring,
		RecurringPattern: in.RecurringPattern,
		CreatedAt:        s.now(),
		UpdatedAt:        s.now(),
	}

	lock := s.locks.get(in.EquipmentID)
	lock.Lock()
	err := s.Repo.CreateBookingIfFree(ctx, booking)
	lock.Unlock()
	if err != nil {
		return nil, err
	}

	s.publish(ctx, booking.EquipmentID, map[string]any{
		"type":         "booking_created",
		"booking_id":   booking.ID,
		"equipment_id": booking.EquipmentID,
		"user_id":      booking.UserID,
	})
	return booking, nil
}

type UpdateBookingInput struct {
	StartTime *time.Time
	EndTime   *time.Time
	Purpose   *string
	Notes     *string
	Status    *models.BookingStatus
}

var allowedTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingScheduled:  {models.BookingInProgress, models.BookingCompleted, models.BookingCancelled},
	models.BookingInProgress: {models.BookingCompleted, models.BookingCancelled},
}

func transitionAllowed(from, to models.BookingStatus) bool {
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// UpdateBooking applies the explicit field set; a time change re-runs the
// conflict check excluding the booking itself, under the equipment's lock.
func (s *BookingService) UpdateBooking(ctx context.Context, id string, in UpdateBookingInput) (*models.Booking, error) {
	booking, err := s.Repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Status != nil && !transitionAllowed(booking.Status, *in.Status) {
		return nil, apperrors.ErrInvalidTransition
	}

	timeChanged := in.StartTime != nil || in.EndTime != nil
	if in.StartTime != nil {
		booking.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		booking.EndTime = *in.EndTime
	}
	if in.Purpose != nil {
		booking.Purpose = *in.Purpose
	}
	if in.Notes != nil {
		booking.Notes = *in.Notes
	}
	if in.Status != nil {
		booking.Status = *in.Status
	}
	booking.UpdatedAt = s.now()

	if timeChanged {
		if !booking.StartTime.Before(booking.EndTime) {
			return nil, apperrors.ErrInvalidInterval
		}
		lock := s.locks.get(booking.EquipmentID)
		lock.Lock()
		err = s.Repo.UpdateBookingIfFree(ctx, booking)
		lock.Unlock()
	} else {
		err = s.Repo.SaveBooking(ctx, booking)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, booking.EquipmentID, map[string]any{
		"type":         "booking_updated",
		"booking_id":   booking.ID,
		"equipment_id": booking.EquipmentID,
		"status":       booking.Status,
	})
	return booking, nil
}

// CancelBooking moves the booking to its terminal Cancelled state, freeing
// the interval for new reservations.
func (s *BookingService) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.Repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.BookingCancelled {
		return booking, nil
	}
	booking.Status = models.BookingCancelled
	booking.UpdatedAt = s.now()
	if err := s.Repo.SaveBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, booking.EquipmentID, map[string]any{
		"type":         "booking_cancelled",
		"booking_id":   booking.ID,
		"equipment_id": booking.EquipmentID,
	})
	return booking, nil
}
