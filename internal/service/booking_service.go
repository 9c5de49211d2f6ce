package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/booking"
	"marketplace/internal/client"
	"marketplace/internal/domain"
	"marketplace/internal/events"
	"marketplace/internal/metrics"
	"marketplace/internal/models"
	"marketplace/internal/wallet"

	"github.com/rs/zerolog"
)

// CreateBookingInput is what the booking form collects.
type CreateBookingInput struct {
	Service   *models.Service
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
}

type BookingService struct {
	bookings domain.BookingAPI
	gate     *wallet.Gate
	eventBus domain.EventPublisher
	grid     booking.Grid
	loc      *time.Location
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewBookingService(bookings domain.BookingAPI, gate *wallet.Gate, eventBus domain.EventPublisher, grid booking.Grid, loc *time.Location, logger *zerolog.Logger) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		bookings: bookings,
		gate:     gate,
		eventBus: eventBus,
		grid:     grid,
		loc:      loc,
		now:      func() time.Time { return time.Now().In(loc) },
		logger:   logger,
	}
}

// TimeSlots lists the start times offered by the booking form.
func (s *BookingService) TimeSlots() []string {
	return s.grid.Slots()
}

// MinDate is the earliest date the booking form accepts.
func (s *BookingService) MinDate() time.Time {
	return booking.MinBookingDate(s.now())
}

// Now is the current time in the booking location.
func (s *BookingService) Now() time.Time {
	return s.now()
}

func (s *BookingService) List(ctx context.Context, session *models.Session, filters models.BookingFilters) (*models.Page[models.Booking], error) {
	if session == nil {
		return nil, ErrNoSession
	}
	page, err := s.bookings.ListBookings(ctx, session, filters)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if page == nil {
		page = &models.Page[models.Booking]{}
	}
	return page, nil
}

func (s *BookingService) Get(ctx context.Context, session *models.Session, id string) (*models.Booking, error) {
	if session == nil {
		return nil, ErrNoSession
	}
	b, err := s.bookings.GetBooking(ctx, session, id)
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", id, err)
	}
	return b, nil
}

// Availability returns the free start times of a service on date.
func (s *BookingService) Availability(ctx context.Context, session *models.Session, serviceID, date string) (*models.Availability, error) {
	if session == nil {
		return nil, ErrNoSession
	}
	if strings.TrimSpace(date) == "" {
		return nil, ErrDateRequired
	}
	d, err := models.ParseDate(date, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDateRequired, err)
	}
	return s.bookings.CheckAvailability(ctx, session, serviceID, d)
}

// ValidateCreate runs the form checks that need no network.
func (s *BookingService) ValidateCreate(session *models.Session, in CreateBookingInput) (models.CreateBookingRequest, error) {
	if session == nil {
		return models.CreateBookingRequest{}, ErrNoSession
	}
	if session.Role() != models.RoleCustomer {
		return models.CreateBookingRequest{}, ErrCustomerOnly
	}
	if in.Service == nil || in.Service.ID == "" {
		return models.CreateBookingRequest{}, ErrServiceRequired
	}

	dateStr := strings.TrimSpace(in.Date)
	startTime := strings.TrimSpace(in.StartTime)
	if dateStr == "" {
		return models.CreateBookingRequest{}, ErrDateRequired
	}
	if startTime == "" {
		return models.CreateBookingRequest{}, ErrTimeRequired
	}

	date, err := models.ParseDate(dateStr, s.loc)
	if err != nil {
		return models.CreateBookingRequest{}, fmt.Errorf("%w: %w", ErrDateRequired, err)
	}
	if !booking.IsAfterToday(date.Time, s.now()) {
		return models.CreateBookingRequest{}, ErrDateTooSoon
	}
	slot, ok := s.grid.Normalize(startTime)
	if !ok {
		return models.CreateBookingRequest{}, ErrInvalidTimeSlot
	}

	return models.CreateBookingRequest{
		ServiceID:   in.Service.ID,
		CustomerID:  session.User.ID,
		BookingDate: date,
		StartTime:   slot,
	}, nil
}

// CheckBalance runs the wallet gate for the service price.
func (s *BookingService) CheckBalance(ctx context.Context, session *models.Session, svc *models.Service) (wallet.Decision, error) {
	if svc == nil {
		return wallet.Decision{}, ErrServiceRequired
	}
	decision, err := s.gate.Check(ctx, session, svc.Price)
	switch {
	case err != nil:
		metrics.IncBalanceCheck("unavailable")
	case decision.Sufficient:
		metrics.IncBalanceCheck("sufficient")
	default:
		metrics.IncBalanceCheck("insufficient")
	}
	return decision, err
}

// Create validates the form, checks the balance and then asks the backend to
// create the booking. The returned booking is the server's.
func (s *BookingService) Create(ctx context.Context, session *models.Session, in CreateBookingInput) (*models.Booking, error) {
	req, err := s.ValidateCreate(session, in)
	if err != nil {
		metrics.IncBookingOperation("create", "invalid")
		return nil, err
	}

	decision, err := s.CheckBalance(ctx, session, in.Service)
	if err != nil {
		metrics.IncBookingOperation("create", "blocked")
		s.publishFailure("create", "", err, client.MsgCreateBooking)
		return nil, err
	}
	if !decision.Sufficient {
		metrics.IncBookingOperation("create", "blocked")
		return nil, &InsufficientBalanceError{Decision: decision}
	}

	created, err := s.bookings.CreateBooking(ctx, session, req)
	if err != nil {
		metrics.IncBookingOperation("create", "rejected")
		s.logger.Error().Err(err).Str("service_id", req.ServiceID).Msg("Failed to create booking")
		s.publishFailure("create", "", err, client.MsgCreateBooking)
		return nil, err
	}

	metrics.IncBookingOperation("create", "ok")
	s.logger.Info().Str("booking_id", created.ID).Str("service_id", req.ServiceID).Msg("Booking created")
	s.publishEvent(events.EventBookingCreated, created, session, "")
	return created, nil
}

// ValidateConfirm reports whether the viewer may confirm b.
func (s *BookingService) ValidateConfirm(session *models.Session, b *models.Booking) error {
	if session == nil {
		return ErrNoSession
	}
	if !booking.CanConfirm(b, session.Role()) {
		return ErrNotAllowed
	}
	return nil
}

func (s *BookingService) Confirm(ctx context.Context, session *models.Session, b *models.Booking) (*models.Booking, error) {
	if err := s.ValidateConfirm(session, b); err != nil {
		metrics.IncBookingOperation("confirm", "invalid")
		return nil, err
	}

	confirmed, err := s.bookings.ConfirmBooking(ctx, session, b.ID)
	if err != nil {
		metrics.IncBookingOperation("confirm", "rejected")
		s.logger.Error().Err(err).Str("booking_id", b.ID).Msg("Failed to confirm booking")
		s.publishFailure("confirm", b.ID, err, client.MsgConfirmBooking)
		return nil, err
	}

	metrics.IncBookingOperation("confirm", "ok")
	s.publishEvent(events.EventBookingConfirmed, confirmed, session, "")
	return confirmed, nil
}

// ValidateCancel returns the trimmed reason if the viewer may cancel b.
func (s *BookingService) ValidateCancel(session *models.Session, b *models.Booking, reason string) (string, error) {
	if session == nil {
		return "", ErrNoSession
	}
	trimmed, err := booking.ValidateReason(reason)
	if err != nil {
		return "", err
	}
	if !booking.CanCancel(b, session.Role(), s.now()) {
		return "", ErrNotAllowed
	}
	return trimmed, nil
}

func (s *BookingService) Cancel(ctx context.Context, session *models.Session, b *models.Booking, reason string) (*models.Booking, error) {
	trimmed, err := s.ValidateCancel(session, b, reason)
	if err != nil {
		metrics.IncBookingOperation("cancel", "invalid")
		return nil, err
	}

	cancelled, err := s.bookings.CancelBooking(ctx, session, b.ID, models.CancelBookingRequest{Reason: trimmed})
	if err != nil {
		metrics.IncBookingOperation("cancel", "rejected")
		s.logger.Error().Err(err).Str("booking_id", b.ID).Msg("Failed to cancel booking")
		s.publishFailure("cancel", b.ID, err, client.MsgCancelBooking)
		return nil, err
	}

	metrics.IncBookingOperation("cancel", "ok")
	s.publishEvent(events.EventBookingCancelled, cancelled, session, trimmed)
	return cancelled, nil
}

func (s *BookingService) publishEvent(eventType string, b *models.Booking, session *models.Session, reason string) {
	if s.eventBus == nil || b == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   b.ID,
		ServiceID:   b.ServiceID,
		ServiceName: b.ServiceName(),
		Status:      string(b.Status),
		Date:        b.BookingDate.String(),
		StartTime:   b.StartTime,
		TotalPrice:  b.TotalPrice.StringFixed(2),
		Reason:      reason,
	}
	if session != nil {
		payload.ActorID = session.User.ID
		payload.ActorRole = string(session.Role())
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", b.ID).Msg("Failed to publish booking event")
	}
}

// publishFailure emits the transient notification for a failed operation.
func (s *BookingService) publishFailure(operation, bookingID string, err error, fallback string) {
	if s.eventBus == nil || errors.Is(err, context.Canceled) {
		return
	}

	payload := events.FailurePayload{
		Operation: operation,
		BookingID: bookingID,
		Messages:  UserMessage(err, fallback),
	}
	if pubErr := s.eventBus.PublishJSON(events.EventBookingFailed, payload); pubErr != nil {
		s.logger.Error().Err(pubErr).Str("event_type", events.EventBookingFailed).Msg("Failed to publish failure event")
	}
}
