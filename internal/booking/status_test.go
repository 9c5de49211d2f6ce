package booking

import (
	"testing"
	"time"

	"marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roles = []models.Role{models.RoleCustomer, models.RoleProvider}

func bookingOn(date time.Time, status models.BookingStatus) *models.Booking {
	return &models.Booking{ID: "b1", BookingDate: models.Date{Time: date}, Status: status}
}

func TestCanConfirm(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	for _, status := range models.BookingStatuses {
		for _, role := range roles {
			b := bookingOn(now.AddDate(0, 0, 3), status)
			want := role == models.RoleProvider && status == models.BookingPending
			assert.Equal(t, want, CanConfirm(b, role), "%s/%s", role, status)
		}
	}
	assert.False(t, CanConfirm(nil, models.RoleProvider))
	assert.False(t, CanConfirm(bookingOn(now, models.BookingPending), models.Role("ADMIN")))
}

func TestCanCancel(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("FutureOpenBookings", func(t *testing.T) {
		for _, status := range []models.BookingStatus{models.BookingPending, models.BookingConfirmed} {
			for _, role := range roles {
				assert.True(t, CanCancel(bookingOn(now.AddDate(0, 0, 1), status), role, now), "%s/%s", role, status)
			}
		}
	})

	t.Run("PastBookings", func(t *testing.T) {
		for _, status := range models.BookingStatuses {
			for _, role := range roles {
				assert.False(t, CanCancel(bookingOn(now.AddDate(0, 0, -1), status), role, now), "%s/%s", role, status)
			}
		}
	})

	t.Run("TerminalBookings", func(t *testing.T) {
		for _, status := range []models.BookingStatus{models.BookingCancelled, models.BookingCompleted} {
			assert.False(t, CanCancel(bookingOn(now.AddDate(0, 1, 0), status), models.RoleCustomer, now))
		}
	})

	t.Run("ExactlyNow", func(t *testing.T) {
		assert.True(t, CanCancel(bookingOn(now, models.BookingPending), models.RoleCustomer, now))
	})

	t.Run("SameDay", func(t *testing.T) {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		for _, status := range []models.BookingStatus{models.BookingPending, models.BookingConfirmed} {
			for _, role := range roles {
				assert.False(t, CanCancel(bookingOn(today, status), role, now), "%s/%s", role, status)
			}
		}
		assert.True(t, CanCancel(bookingOn(today, models.BookingPending), models.RoleCustomer, today))
	})

	t.Run("UnknownRole", func(t *testing.T) {
		assert.False(t, CanCancel(bookingOn(now.AddDate(0, 0, 1), models.BookingPending), models.Role(""), now))
	})
}

// A pending booking from yesterday can still be confirmed by the provider but
// no longer cancelled.
func TestYesterdayPendingBooking(t *testing.T) {
	now := time.Now()
	b := bookingOn(now.AddDate(0, 0, -1), models.BookingPending)

	assert.False(t, CanCancel(b, models.RoleProvider, now))
	assert.False(t, CanCancel(b, models.RoleCustomer, now))
	assert.True(t, CanConfirm(b, models.RoleProvider))
	assert.Equal(t, []Action{ActionConfirm}, Actions(b, models.RoleProvider, now))
	assert.Empty(t, Actions(b, models.RoleCustomer, now))
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]models.BookingStatus]bool{
		{models.BookingPending, models.BookingConfirmed}:   true,
		{models.BookingPending, models.BookingCancelled}:   true,
		{models.BookingConfirmed, models.BookingCancelled}: true,
		{models.BookingConfirmed, models.BookingCompleted}: true,
	}
	for _, from := range models.BookingStatuses {
		for _, to := range models.BookingStatuses {
			assert.Equal(t, allowed[[2]models.BookingStatus{from, to}], CanTransition(from, to), "%s->%s", from, to)
		}
	}

	assert.True(t, IsTerminal(models.BookingCancelled))
	assert.True(t, IsTerminal(models.BookingCompleted))
	assert.False(t, IsTerminal(models.BookingPending))
	assert.False(t, IsTerminal(models.BookingStatus("UNKNOWN")))
}

func TestValidateReason(t *testing.T) {
	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := ValidateReason(reason)
		assert.ErrorIs(t, err, ErrReasonRequired)
	}

	got, err := ValidateReason("  imprevisto  ")
	require.NoError(t, err)
	assert.Equal(t, "imprevisto", got)
}

func TestLabelsAndColors(t *testing.T) {
	assert.Equal(t, "Pendente", Label(models.BookingPending))
	assert.Equal(t, "Confirmada", Label(models.BookingConfirmed))
	assert.Equal(t, "Cancelada", Label(models.BookingCancelled))
	assert.Equal(t, "Concluída", Label(models.BookingCompleted))
	assert.Equal(t, "WEIRD", Label(models.BookingStatus("WEIRD")))

	assert.Contains(t, Color(models.BookingPending), "yellow")
	assert.Contains(t, Color(models.BookingConfirmed), "green")
	assert.Contains(t, Color(models.BookingCancelled), "red")
	assert.Contains(t, Color(models.BookingCompleted), "blue")
	assert.Equal(t, defaultColor, Color(models.BookingStatus("WEIRD")))

	customer := models.CancelledByCustomer
	provider := models.CancelledByProvider
	system := models.CancelledBySystem
	assert.Equal(t, "Cliente", CancelledByLabel(&customer))
	assert.Equal(t, "Prestador", CancelledByLabel(&provider))
	assert.Equal(t, "Sistema", CancelledByLabel(&system))
	assert.Equal(t, "", CancelledByLabel(nil))
}

func TestTimeline(t *testing.T) {
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	updated := created.Add(2 * time.Hour)
	cancelled := created.Add(5 * time.Hour)

	pending := &models.Booking{Status: models.BookingPending, CreatedAt: created}
	require.Len(t, Timeline(pending), 1)
	assert.Equal(t, "Criada", Timeline(pending)[0].Label)

	confirmed := &models.Booking{Status: models.BookingConfirmed, CreatedAt: created, UpdatedAt: updated}
	entries := Timeline(confirmed)
	require.Len(t, entries, 2)
	assert.Equal(t, "Confirmada", entries[1].Label)
	assert.Equal(t, updated, entries[1].At)

	c := &models.Booking{Status: models.BookingCancelled, CreatedAt: created, UpdatedAt: updated, CancelledAt: &cancelled}
	entries = Timeline(c)
	require.Len(t, entries, 2)
	assert.Equal(t, "Cancelada", entries[1].Label)
	assert.Equal(t, cancelled, entries[1].At)

	assert.Nil(t, Timeline(nil))
}
