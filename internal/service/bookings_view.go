package service

import (
	"context"
	"errors"
	"sync"

	"marketplace/internal/dashboard"
	"marketplace/internal/domain"
	"marketplace/internal/events"
	"marketplace/internal/models"
	"marketplace/internal/wallet"

	"github.com/rs/zerolog"
)

// BookingsView is the state behind one bookings screen: the last fetched
// collection, the active tab and the selected booking. Every mutation is
// followed by a reload that reads the filters current at reload time.
type BookingsView struct {
	service  *BookingService
	session  *models.Session
	eventBus domain.EventPublisher
	logger   *zerolog.Logger

	mu         sync.Mutex
	query      models.BookingFilters
	tab        dashboard.Tab
	selectedID string
	bookings   []models.Booking
	pagination *models.Pagination
	selected   *models.Booking
	loading    bool
	inFlight   int
	reloadSeq  uint64
}

// BookingsSnapshot is a consistent copy of the view state.
type BookingsSnapshot struct {
	Tab        dashboard.Tab
	Bookings   []models.Booking
	Stats      dashboard.Stats
	Pagination *models.Pagination
	Selected   *models.Booking
	Loading    bool
	Busy       bool
}

func NewBookingsView(service *BookingService, session *models.Session, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingsView {
	return &BookingsView{
		service:  service,
		session:  session,
		eventBus: eventBus,
		logger:   logger,
		tab:      dashboard.TabAll,
	}
}

// SetFilters replaces the server-side query used by the next reload.
func (v *BookingsView) SetFilters(f models.BookingFilters) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = f
}

func (v *BookingsView) SetTab(tab dashboard.Tab) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tab = tab
}

// Select makes id the booking shown in detail. An empty id clears it.
func (v *BookingsView) Select(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selectedID = id
	v.selected = nil
	if id == "" {
		return
	}
	for i := range v.bookings {
		if v.bookings[i].ID == id {
			b := v.bookings[i]
			v.selected = &b
			return
		}
	}
}

func (v *BookingsView) Busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inFlight > 0
}

func (v *BookingsView) Snapshot() BookingsSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := BookingsSnapshot{
		Tab:      v.tab,
		Bookings: dashboard.Filter(v.bookings, v.tab),
		Stats:    dashboard.Count(v.bookings),
		Loading:  v.loading,
		Busy:     v.inFlight > 0,
	}
	if v.pagination != nil {
		p := *v.pagination
		snap.Pagination = &p
	}
	if v.selected != nil {
		b := *v.selected
		snap.Selected = &b
	}
	return snap
}

// Reload fetches the collection with the filters set at the time it runs and
// refreshes the selected booking. Results of an older reload that finishes
// after a newer one are dropped.
func (v *BookingsView) Reload(ctx context.Context) error {
	v.mu.Lock()
	query := v.query
	selectedID := v.selectedID
	v.reloadSeq++
	seq := v.reloadSeq
	v.loading = true
	v.mu.Unlock()

	page, err := v.service.List(ctx, v.session, query)

	var selected *models.Booking
	var selErr error
	if err == nil && selectedID != "" {
		selected, selErr = v.service.Get(ctx, v.session, selectedID)
	}

	v.mu.Lock()
	if seq != v.reloadSeq {
		v.mu.Unlock()
		return err
	}
	v.loading = false
	if err != nil {
		v.mu.Unlock()
		v.logger.Error().Err(err).Msg("Failed to reload bookings")
		return err
	}

	v.bookings = append([]models.Booking(nil), page.Items...)
	v.pagination = page.Pagination
	if selectedID == v.selectedID {
		switch {
		case selErr == nil && selected != nil:
			v.selected = selected
		case selErr != nil:
			v.logger.Warn().Err(selErr).Str("booking_id", selectedID).Msg("Failed to refresh selected booking")
		}
	}
	payload := events.ReloadPayload{Tab: string(v.tab), Count: len(v.bookings)}
	v.mu.Unlock()

	if v.eventBus == nil {
		return nil
	}
	if pubErr := v.eventBus.PublishJSON(events.EventBookingsReloaded, payload); pubErr != nil {
		v.logger.Error().Err(pubErr).Str("event_type", events.EventBookingsReloaded).Msg("Failed to publish reload event")
	}
	return nil
}

// Confirm confirms the locally held copy of booking id.
func (v *BookingsView) Confirm(ctx context.Context, id string) (*models.Booking, error) {
	b, err := v.local(id)
	if err != nil {
		return nil, err
	}
	if err := v.service.ValidateConfirm(v.session, b); err != nil {
		return nil, err
	}

	done := v.begin()
	defer done()

	confirmed, opErr := v.service.Confirm(ctx, v.session, b)
	return confirmed, v.settle(ctx, opErr)
}

// Cancel cancels the locally held copy of booking id. An empty reason fails
// before any request is made.
func (v *BookingsView) Cancel(ctx context.Context, id, reason string) (*models.Booking, error) {
	b, err := v.local(id)
	if err != nil {
		return nil, err
	}
	if _, err := v.service.ValidateCancel(v.session, b, reason); err != nil {
		return nil, err
	}

	done := v.begin()
	defer done()

	cancelled, opErr := v.service.Cancel(ctx, v.session, b, reason)
	return cancelled, v.settle(ctx, opErr)
}

// Create books a service and reloads the list once the backend was asked.
func (v *BookingsView) Create(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if _, err := v.service.ValidateCreate(v.session, in); err != nil {
		return nil, err
	}

	done := v.begin()
	defer done()

	created, opErr := v.service.Create(ctx, v.session, in)
	if errors.Is(opErr, ErrInsufficientBalance) || errors.Is(opErr, wallet.ErrBalanceUnavailable) {
		return nil, opErr
	}
	return created, v.settle(ctx, opErr)
}

// settle reloads after a request and returns the operation error first.
func (v *BookingsView) settle(ctx context.Context, opErr error) error {
	reloadErr := v.Reload(ctx)
	if opErr != nil {
		return opErr
	}
	return reloadErr
}

func (v *BookingsView) begin() func() {
	v.mu.Lock()
	v.inFlight++
	v.mu.Unlock()
	return func() {
		v.mu.Lock()
		v.inFlight--
		v.mu.Unlock()
	}
}

func (v *BookingsView) local(id string) (*models.Booking, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected != nil && v.selected.ID == id {
		b := *v.selected
		return &b, nil
	}
	for i := range v.bookings {
		if v.bookings[i].ID == id {
			b := v.bookings[i]
			return &b, nil
		}
	}
	return nil, ErrBookingNotLoaded
}
