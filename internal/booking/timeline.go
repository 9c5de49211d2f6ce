package booking

import (
	"time"

	"marketplace/internal/models"
)

type TimelineEntry struct {
	Label  string
	At     time.Time
	Status models.BookingStatus
}

// Timeline returns the history shown on the booking detail view: creation
// followed by the entry for the current status, if it has one.
func Timeline(b *models.Booking) []TimelineEntry {
	if b == nil {
		return nil
	}
	entries := []TimelineEntry{{Label: "Criada", At: b.CreatedAt, Status: models.BookingPending}}

	switch b.Status {
	case models.BookingConfirmed, models.BookingCompleted:
		if !b.UpdatedAt.IsZero() {
			entries = append(entries, TimelineEntry{Label: Label(b.Status), At: b.UpdatedAt, Status: b.Status})
		}
	case models.BookingCancelled:
		if b.CancelledAt != nil {
			entries = append(entries, TimelineEntry{Label: Label(b.Status), At: *b.CancelledAt, Status: b.Status})
		}
	}
	return entries
}
