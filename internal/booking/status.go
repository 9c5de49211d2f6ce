// Package booking derives the actions, labels and history a viewer sees for a
// booking. Everything here is a pure function of the booking, the viewer's
// role and the current time.
package booking

import (
	"errors"
	"strings"
	"time"

	"marketplace/internal/models"
)

var ErrReasonRequired = errors.New("cancellation reason is required")

var allowedTransitions = map[models.BookingStatus]map[models.BookingStatus]bool{
	models.BookingPending: {
		models.BookingConfirmed: true,
		models.BookingCancelled: true,
	},
	models.BookingConfirmed: {
		models.BookingCancelled: true,
		models.BookingCompleted: true,
	},
	models.BookingCancelled: {},
	models.BookingCompleted: {},
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another.
func CanTransition(from, to models.BookingStatus) bool {
	return allowedTransitions[from][to]
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(s models.BookingStatus) bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

// CanConfirm is true only for a provider looking at a PENDING booking.
func CanConfirm(b *models.Booking, role models.Role) bool {
	if b == nil {
		return false
	}
	switch role {
	case models.RoleProvider:
		return b.Status == models.BookingPending
	case models.RoleCustomer:
		return false
	default:
		return false
	}
}

// CanCancel is true while the booking is still open and its date has not
// passed. Either party may cancel.
func CanCancel(b *models.Booking, role models.Role, now time.Time) bool {
	if b == nil || !role.Valid() {
		return false
	}
	if b.BookingDate.Before(now) {
		return false
	}
	return CanTransition(b.Status, models.BookingCancelled)
}

// ValidateReason returns the trimmed reason or ErrReasonRequired.
func ValidateReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return "", ErrReasonRequired
	}
	return trimmed, nil
}

type Action string

const (
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
)

// Actions lists what the viewer may do with the booking right now.
func Actions(b *models.Booking, role models.Role, now time.Time) []Action {
	var actions []Action
	if CanConfirm(b, role) {
		actions = append(actions, ActionConfirm)
	}
	if CanCancel(b, role, now) {
		actions = append(actions, ActionCancel)
	}
	return actions
}
