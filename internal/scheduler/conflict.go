package scheduler

import (
	"time"

	"github.com/Skotchmaster/lab_management/internal/models"
)

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2)
// intersect. End instants are excluded, so back-to-back intervals do not
// overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// FindConflicts returns every booking whose interval overlaps
// [start, end). Cancelled bookings and the booking identified by excludeID
// are skipped; excludeID is supplied when re-validating a booking being
// modified so it does not conflict with itself.
func FindConflicts(existing []models.Booking, start, end time.Time, excludeID string) []models.Booking {
	var conflicts []models.Booking
	for _, b := range existing {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if b.Status == models.BookingCancelled {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}
