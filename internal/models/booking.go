package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// BookingStatuses lists every status in lifecycle order.
var BookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

type CancelledBy string

const (
	CancelledByCustomer CancelledBy = "CUSTOMER"
	CancelledByProvider CancelledBy = "PROVIDER"
	CancelledBySystem   CancelledBy = "SYSTEM"
)

// PartyRef is the compact service/provider/customer reference embedded in
// booking listings.
type PartyRef struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Email    string          `json:"email,omitempty"`
	Phone    string          `json:"phone,omitempty"`
	Category ServiceCategory `json:"category,omitempty"`
}

type Booking struct {
	ID                 string          `json:"id"`
	ServiceID          string          `json:"service_id,omitempty"`
	CustomerID         string          `json:"customer_id,omitempty"`
	ProviderID         string          `json:"provider_id,omitempty"`
	BookingDate        Date            `json:"booking_date"`
	StartTime          string          `json:"start_time"`
	EndTime            string          `json:"end_time"`
	Status             BookingStatus   `json:"status"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	CancellationReason *string         `json:"cancellation_reason"`
	CancelledBy        *CancelledBy    `json:"cancelled_by"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	CancelledAt        *time.Time      `json:"cancelled_at"`

	Service  *PartyRef `json:"service,omitempty"`
	Provider *PartyRef `json:"provider,omitempty"`
	Customer *PartyRef `json:"customer,omitempty"`
}

var ErrCancellationMismatch = errors.New("cancellation fields do not match booking status")

// CheckCancellationInvariant reports whether the cancellation fields are set
// exactly when the booking is CANCELLED.
func (b *Booking) CheckCancellationInvariant() error {
	set := b.CancellationReason != nil && b.CancelledAt != nil && b.CancelledBy != nil
	unset := b.CancellationReason == nil && b.CancelledAt == nil && b.CancelledBy == nil
	if b.Status == BookingCancelled && set {
		return nil
	}
	if b.Status != BookingCancelled && unset {
		return nil
	}
	return ErrCancellationMismatch
}

// ServiceName returns the embedded service name, or the service id if the
// listing did not include details.
func (b *Booking) ServiceName() string {
	if b.Service != nil && b.Service.Name != "" {
		return b.Service.Name
	}
	return b.ServiceID
}

// Counterpart returns the party the viewer is dealing with: the provider for
// customers and the customer for providers.
func (b *Booking) Counterpart(role Role) *PartyRef {
	if role == RoleProvider {
		return b.Customer
	}
	return b.Provider
}

type BookingFilters struct {
	Status    BookingStatus
	Date      string
	ServiceID string
	Page      int
	Limit     int
}

type CreateBookingRequest struct {
	ServiceID   string `json:"service_id"`
	CustomerID  string `json:"customer_id"`
	BookingDate Date   `json:"booking_date"`
	StartTime   string `json:"start_time"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type Availability struct {
	Available      bool     `json:"available"`
	AvailableTimes []string `json:"availableTimes"`
}
