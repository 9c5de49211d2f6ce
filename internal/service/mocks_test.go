package service

import (
	"context"
	"io"
	"time"

	"marketplace/internal/booking"
	"marketplace/internal/domain"
	"marketplace/internal/models"
	"marketplace/internal/wallet"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockBookings struct {
	mock.Mock
}

func (m *mockBookings) ListBookings(ctx context.Context, session *models.Session, filters models.BookingFilters) (*models.Page[models.Booking], error) {
	args := m.Called(ctx, session, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[models.Booking]), args.Error(1)
}
func (m *mockBookings) GetBooking(ctx context.Context, session *models.Session, id string) (*models.Booking, error) {
	args := m.Called(ctx, session, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookings) CreateBooking(ctx context.Context, session *models.Session, req models.CreateBookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, session, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookings) ConfirmBooking(ctx context.Context, session *models.Session, id string) (*models.Booking, error) {
	args := m.Called(ctx, session, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookings) CancelBooking(ctx context.Context, session *models.Session, id string, req models.CancelBookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, session, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookings) CheckAvailability(ctx context.Context, session *models.Session, serviceID string, date models.Date) (*models.Availability, error) {
	args := m.Called(ctx, session, serviceID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Availability), args.Error(1)
}

type mockWallet struct {
	mock.Mock
}

func (m *mockWallet) GetBalance(ctx context.Context, session *models.Session) (*models.Balance, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}
func (m *mockWallet) ListTransactions(ctx context.Context, session *models.Session, query models.TransactionQuery) (*models.Page[models.Transaction], error) {
	args := m.Called(ctx, session, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[models.Transaction]), args.Error(1)
}
func (m *mockWallet) Deposit(ctx context.Context, session *models.Session, req models.DepositRequest) (*models.Transaction, error) {
	args := m.Called(ctx, session, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) ListServices(ctx context.Context, session *models.Session, filters models.ServiceFilters) ([]models.Service, error) {
	args := m.Called(ctx, session, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Service), args.Error(1)
}
func (m *mockCatalog) GetService(ctx context.Context, session *models.Session, id string) (*models.Service, error) {
	args := m.Called(ctx, session, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}
func (m *mockCatalog) FetchService(ctx context.Context, session *models.Session, id string) (*models.Service, error) {
	args := m.Called(ctx, session, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}
func (m *mockCatalog) ListMyServices(ctx context.Context, session *models.Session) ([]models.Service, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Service), args.Error(1)
}
func (m *mockCatalog) CreateService(ctx context.Context, session *models.Session, input models.ServiceInput) (*models.Service, error) {
	args := m.Called(ctx, session, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}
func (m *mockCatalog) UpdateService(ctx context.Context, session *models.Session, id string, input models.ServiceInput) (*models.Service, error) {
	args := m.Called(ctx, session, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}
func (m *mockCatalog) ToggleServiceStatus(ctx context.Context, session *models.Session, id string, status models.ServiceStatus) (*models.Service, error) {
	args := m.Called(ctx, session, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}
func (m *mockCatalog) DeleteService(ctx context.Context, session *models.Session, id string) error {
	return m.Called(ctx, session, id).Error(0)
}

type mockAuth struct {
	mock.Mock
}

func (m *mockAuth) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockAuth) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}
func (m *mockAuth) Me(ctx context.Context, session *models.Session) (*models.User, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) GetSession(ctx context.Context, key string) (*models.Session, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}
func (m *mockSessions) SetSession(ctx context.Context, key string, session *models.Session) error {
	return m.Called(ctx, key, session).Error(0)
}
func (m *mockSessions) ClearSession(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type recordedEvent struct {
	Type    string
	Payload interface{}
}

type recordingPublisher struct {
	events []recordedEvent
}

func (p *recordingPublisher) PublishJSON(eventType string, payload interface{}) error {
	p.events = append(p.events, recordedEvent{Type: eventType, Payload: payload})
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var testLoc = time.UTC

// fixedNow is a Wednesday mid-morning.
var fixedNow = time.Date(2026, 3, 11, 10, 0, 0, 0, testLoc)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func customerSession() *models.Session {
	return &models.Session{Token: "tok-c", User: models.User{ID: "c1", Name: "Ana", Type: models.RoleCustomer}}
}

func providerSession() *models.Session {
	return &models.Session{Token: "tok-p", User: models.User{ID: "p1", Name: "Bruno", Type: models.RoleProvider}}
}

func dateOf(t time.Time) models.Date {
	return models.NewDate(t)
}

func testService(price int64) *models.Service {
	return &models.Service{
		ID:       "s1",
		Name:     "Limpeza",
		Category: models.CategoryMaintenance,
		Duration: 60,
		Price:    decimal.NewFromInt(price),
		Status:   models.ServiceActive,
	}
}

func newTestBookingService(bookings *mockBookings, w *mockWallet, pub *recordingPublisher) *BookingService {
	logger := newTestLogger()
	var bus domain.EventPublisher
	if pub != nil {
		bus = pub
	}
	svc := NewBookingService(bookings, wallet.NewGate(w, logger), bus, booking.DefaultGrid(), testLoc, logger)
	svc.now = func() time.Time { return fixedNow }
	return svc
}
