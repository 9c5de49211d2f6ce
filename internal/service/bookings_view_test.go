package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"marketplace/internal/client"
	"marketplace/internal/dashboard"
	"marketplace/internal/events"
	"marketplace/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pageOf(items ...models.Booking) *models.Page[models.Booking] {
	return &models.Page[models.Booking]{
		Items:      items,
		Pagination: &models.Pagination{Page: 1, Limit: 20, Total: len(items), TotalPages: 1},
	}
}

func pendingBooking(id string) models.Booking {
	return models.Booking{
		ID:          id,
		ServiceID:   "s1",
		Status:      models.BookingPending,
		BookingDate: dateOf(fixedNow.AddDate(0, 0, 3)),
		StartTime:   "09:00",
		TotalPrice:  decimal.NewFromInt(5000),
	}
}

func withStatus(b models.Booking, status models.BookingStatus) models.Booking {
	b.Status = status
	return b
}

func TestBookingsView_ReloadUsesCurrentFilters(t *testing.T) {
	bookings := new(mockBookings)
	pub := &recordingPublisher{}
	svc := newTestBookingService(bookings, new(mockWallet), pub)
	view := NewBookingsView(svc, providerSession(), pub, newTestLogger())

	bookings.On("ListBookings", mock.Anything, mock.Anything, models.BookingFilters{}).Return(pageOf(pendingBooking("b1")), nil).Once()
	require.NoError(t, view.Reload(context.Background()))

	view.SetFilters(models.BookingFilters{Status: models.BookingConfirmed})
	bookings.On("ListBookings", mock.Anything, mock.Anything, models.BookingFilters{Status: models.BookingConfirmed}).Return(pageOf(), nil).Once()
	require.NoError(t, view.Reload(context.Background()))

	snap := view.Snapshot()
	assert.Empty(t, snap.Bookings)
	assert.False(t, snap.Loading)
	assert.Equal(t, []string{events.EventBookingsReloaded, events.EventBookingsReloaded}, pub.types())
	bookings.AssertExpectations(t)
}

func TestBookingsView_SnapshotAppliesTab(t *testing.T) {
	bookings := new(mockBookings)
	svc := newTestBookingService(bookings, new(mockWallet), nil)
	view := NewBookingsView(svc, customerSession(), nil, newTestLogger())

	bookings.On("ListBookings", mock.Anything, mock.Anything, mock.Anything).Return(pageOf(
		pendingBooking("b1"),
		withStatus(pendingBooking("b2"), models.BookingConfirmed),
		withStatus(pendingBooking("b3"), models.BookingCancelled),
	), nil).Once()
	require.NoError(t, view.Reload(context.Background()))

	view.SetTab(dashboard.TabConfirmada)
	snap := view.Snapshot()
	require.Len(t, snap.Bookings, 1)
	assert.Equal(t, "b2", snap.Bookings[0].ID)
	assert.Equal(t, 3, snap.Stats.Total)
	assert.Equal(t, 1, snap.Stats.Pendente)
	require.NotNil(t, snap.Pagination)
	assert.Equal(t, 3, snap.Pagination.Total)
}

func TestBookingsView_ReloadError(t *testing.T) {
	bookings := new(mockBookings)
	svc := newTestBookingService(bookings, new(mockWallet), nil)
	view := NewBookingsView(svc, customerSession(), nil, newTestLogger())

	bookings.On("ListBookings", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()
	err := view.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{client.MsgLoadBookings}, UserMessage(err, client.MsgLoadBookings))
	assert.False(t, view.Snapshot().Loading)
}

// Scenario C: a provider confirms; a second confirm from a stale copy is
// rejected by the server and the reload shows CONFIRMED.
func TestBookingsView_ConfirmThenStaleConfirm(t *testing.T) {
	bookings := new(mockBookings)
	pub := &recordingPublisher{}
	svc := newTestBookingService(bookings, new(mockWallet), pub)
	session := providerSession()

	first := NewBookingsView(svc, session, pub, newTestLogger())
	stale := NewBookingsView(svc, session, pub, newTestLogger())

	pending := pendingBooking("b1")
	confirmed := withStatus(pending, models.BookingConfirmed)

	bookings.On("ListBookings", mock.Anything, session, mock.Anything).Return(pageOf(pending), nil).Twice()
	require.NoError(t, first.Reload(context.Background()))
	require.NoError(t, stale.Reload(context.Background()))

	bookings.On("ConfirmBooking", mock.Anything, session, "b1").Return(&confirmed, nil).Once()
	bookings.On("ListBookings", mock.Anything, session, mock.Anything).Return(pageOf(confirmed), nil).Once()

	got, err := first.Confirm(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)
	assert.Equal(t, models.BookingConfirmed, first.Snapshot().Bookings[0].Status)
	assert.False(t, first.Busy())

	// the stale view still holds PENDING, so the request goes out
	assert.Equal(t, models.BookingPending, stale.Snapshot().Bookings[0].Status)
	rejected := &client.APIError{StatusCode: http.StatusBadRequest, Message: "Reserva já confirmada"}
	bookings.On("ConfirmBooking", mock.Anything, session, "b1").Return(nil, rejected).Once()
	bookings.On("ListBookings", mock.Anything, session, mock.Anything).Return(pageOf(confirmed), nil).Once()

	_, err = stale.Confirm(context.Background(), "b1")
	require.ErrorIs(t, err, rejected)
	assert.Equal(t, []string{"Reserva já confirmada"}, UserMessage(err, client.MsgConfirmBooking))
	assert.Equal(t, models.BookingConfirmed, stale.Snapshot().Bookings[0].Status)
	assert.False(t, stale.Busy())

	// and now the precondition fails locally
	_, err = stale.Confirm(context.Background(), "b1")
	assert.ErrorIs(t, err, ErrNotAllowed)

	bookings.AssertExpectations(t)
	bookings.AssertNumberOfCalls(t, "ConfirmBooking", 2)
}

func TestBookingsView_CancelEmptyReasonNoRequest(t *testing.T) {
	bookings := new(mockBookings)
	svc := newTestBookingService(bookings, new(mockWallet), nil)
	view := NewBookingsView(svc, customerSession(), nil, newTestLogger())

	bookings.On("ListBookings", mock.Anything, mock.Anything, mock.Anything).Return(pageOf(pendingBooking("b1")), nil).Once()
	require.NoError(t, view.Reload(context.Background()))

	_, err := view.Cancel(context.Background(), "b1", "  ")
	require.Error(t, err)
	assert.False(t, view.Busy())

	bookings.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	bookings.AssertNumberOfCalls(t, "ListBookings", 1)
}

func TestBookingsView_CancelRefreshesSelected(t *testing.T) {
	bookings := new(mockBookings)
	svc := newTestBookingService(bookings, new(mockWallet), nil)
	session := customerSession()
	view := NewBookingsView(svc, session, nil, newTestLogger())

	b := pendingBooking("b1")
	bookings.On("ListBookings", mock.Anything, session, mock.Anything).Return(pageOf(b), nil).Once()
	require.NoError(t, view.Reload(context.Background()))
	view.Select("b1")
	require.NotNil(t, view.Snapshot().Selected)

	reason := "Doença"
	by := models.CancelledByCustomer
	at := fixedNow
	cancelled := withStatus(b, models.BookingCancelled)
	cancelled.CancellationReason = &reason
	cancelled.CancelledBy = &by
	cancelled.CancelledAt = &at

	bookings.On("CancelBooking", mock.Anything, session, "b1", models.CancelBookingRequest{Reason: reason}).Return(&cancelled, nil).Once()
	bookings.On("ListBookings", mock.Anything, session, mock.Anything).Return(pageOf(cancelled), nil).Once()
	bookings.On("GetBooking", mock.Anything, session, "b1").Return(&cancelled, nil).Once()

	_, err := view.Cancel(context.Background(), "b1", reason)
	require.NoError(t, err)

	snap := view.Snapshot()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, models.BookingCancelled, snap.Selected.Status)
	assert.Equal(t, reason, *snap.Selected.CancellationReason)
	bookings.AssertExpectations(t)
}

func TestBookingsView_ReloadAfterRejectedCancel(t *testing.T) {
	bookings := new(mockBookings)
	svc := newTestBookingService(bookings, new(mockWallet), nil)
	session := customerSession()
	view := NewBookingsView(svc, session, nil, newTestLogger())

	b := pendingBooking("b1")
	bookings.On("ListBookings", mock.Anything, session, mock.Anything).Return(pageOf(b), nil).Twice()
	require.NoError(t, view.Reload(context.Background()))

	bookings.On("CancelBooking", mock.Anything, session, "b1", mock.Anything).Return(nil, errors.New("boom")).Once()

	_, err := view.Cancel(context.Background(), "b1", "motivo")
	require.Error(t, err)
	assert.Equal(t, []string{client.MsgCancelBooking}, UserMessage(err, client.MsgCancelBooking))
	assert.False(t, view.Busy())
	bookings.AssertExpectations(t)
}

func TestBookingsView_UnknownBooking(t *testing.T) {
	svc := newTestBookingService(new(mockBookings), new(mockWallet), nil)
	view := NewBookingsView(svc, providerSession(), nil, newTestLogger())

	_, err := view.Confirm(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBookingNotLoaded)
}

func TestBookingsView_CreateReloads(t *testing.T) {
	bookings := new(mockBookings)
	w := new(mockWallet)
	svc := newTestBookingService(bookings, w, nil)
	session := customerSession()
	view := NewBookingsView(svc, session, nil, newTestLogger())

	created := pendingBooking("b9")
	w.On("GetBalance", mock.Anything, session).Return(&models.Balance{Balance: decimal.NewFromInt(5000)}, nil).Once()
	bookings.On("CreateBooking", mock.Anything, session, mock.Anything).Return(&created, nil).Once()
	bookings.On("ListBookings", mock.Anything, session, mock.Anything).Return(pageOf(created), nil).Once()

	got, err := view.Create(context.Background(), CreateBookingInput{Service: testService(5000), Date: "2026-03-13", StartTime: "14:00"})
	require.NoError(t, err)
	assert.Equal(t, "b9", got.ID)
	assert.Len(t, view.Snapshot().Bookings, 1)

	bookings.AssertExpectations(t)
	w.AssertExpectations(t)
}

func TestBookingsView_CreateBlockedByBalanceSkipsReload(t *testing.T) {
	bookings := new(mockBookings)
	w := new(mockWallet)
	svc := newTestBookingService(bookings, w, nil)
	session := customerSession()
	view := NewBookingsView(svc, session, nil, newTestLogger())

	w.On("GetBalance", mock.Anything, session).Return(&models.Balance{Balance: decimal.NewFromInt(10)}, nil).Once()

	_, err := view.Create(context.Background(), CreateBookingInput{Service: testService(5000), Date: "2026-03-13", StartTime: "14:00"})
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.False(t, view.Busy())
	bookings.AssertNotCalled(t, "ListBookings", mock.Anything, mock.Anything, mock.Anything)
	bookings.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
}
