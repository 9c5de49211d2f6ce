package dashboard

import (
	"time"

	"marketplace/internal/models"

	"github.com/shopspring/decimal"
)

type CustomerSummary struct {
	ActiveBookings    int             `json:"activeBookings"`
	CompletedBookings int             `json:"completedBookings"`
	PendingBookings   int             `json:"pendingBookings"`
	TotalSpent        decimal.Decimal `json:"totalSpent"`
}

func CustomerStats(bookings []models.Booking) CustomerSummary {
	sum := CustomerSummary{TotalSpent: decimal.Zero}
	for i := range bookings {
		b := &bookings[i]
		switch b.Status {
		case models.BookingPending:
			sum.ActiveBookings++
			sum.PendingBookings++
		case models.BookingConfirmed:
			sum.ActiveBookings++
		case models.BookingCompleted:
			sum.CompletedBookings++
			sum.TotalSpent = sum.TotalSpent.Add(b.TotalPrice)
		}
	}
	return sum
}

type ProviderSummary struct {
	TotalServices   int             `json:"totalServices"`
	ActiveServices  int             `json:"activeServices"`
	MonthlyBookings int             `json:"monthlyBookings"`
	PendingBookings int             `json:"pendingBookings"`
	MonthlyRevenue  decimal.Decimal `json:"monthlyRevenue"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
}

// ProviderStats summarises a provider's listings and bookings. Revenue is
// only recognised for COMPLETED bookings.
func ProviderStats(bookings []models.Booking, services []models.Service, now time.Time) ProviderSummary {
	sum := ProviderSummary{
		TotalServices:  len(services),
		MonthlyRevenue: decimal.Zero,
		TotalRevenue:   decimal.Zero,
	}
	for i := range services {
		if services[i].IsActive() {
			sum.ActiveServices++
		}
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := range bookings {
		b := &bookings[i]
		thisMonth := !b.BookingDate.Before(monthStart)
		if thisMonth {
			sum.MonthlyBookings++
		}
		if b.Status == models.BookingPending {
			sum.PendingBookings++
		}
		if b.Status != models.BookingCompleted {
			continue
		}
		sum.TotalRevenue = sum.TotalRevenue.Add(b.TotalPrice)
		if thisMonth {
			sum.MonthlyRevenue = sum.MonthlyRevenue.Add(b.TotalPrice)
		}
	}
	return sum
}

// Recent returns up to n bookings, most recent booking date first.
func Recent(bookings []models.Booking, n int) []models.Booking {
	sorted := Filter(bookings, TabAll)
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
