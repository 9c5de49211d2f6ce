package domain

import (
	"context"

	"marketplace/internal/models"
)

// BookingAPI is the external booking service.
type BookingAPI interface {
	ListBookings(ctx context.Context, session *models.Session, filters models.BookingFilters) (*models.Page[models.Booking], error)
	GetBooking(ctx context.Context, session *models.Session, id string) (*models.Booking, error)
	CreateBooking(ctx context.Context, session *models.Session, req models.CreateBookingRequest) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, session *models.Session, id string) (*models.Booking, error)
	CancelBooking(ctx context.Context, session *models.Session, id string, req models.CancelBookingRequest) (*models.Booking, error)
	CheckAvailability(ctx context.Context, session *models.Session, serviceID string, date models.Date) (*models.Availability, error)
}

// CatalogAPI is the external service catalog.
type CatalogAPI interface {
	ListServices(ctx context.Context, session *models.Session, filters models.ServiceFilters) ([]models.Service, error)
	GetService(ctx context.Context, session *models.Session, id string) (*models.Service, error)
	FetchService(ctx context.Context, session *models.Session, id string) (*models.Service, error)
	ListMyServices(ctx context.Context, session *models.Session) ([]models.Service, error)
	CreateService(ctx context.Context, session *models.Session, input models.ServiceInput) (*models.Service, error)
	UpdateService(ctx context.Context, session *models.Session, id string, input models.ServiceInput) (*models.Service, error)
	ToggleServiceStatus(ctx context.Context, session *models.Session, id string, status models.ServiceStatus) (*models.Service, error)
	DeleteService(ctx context.Context, session *models.Session, id string) error
}

// WalletAPI is the external wallet service.
type WalletAPI interface {
	GetBalance(ctx context.Context, session *models.Session) (*models.Balance, error)
	ListTransactions(ctx context.Context, session *models.Session, query models.TransactionQuery) (*models.Page[models.Transaction], error)
	Deposit(ctx context.Context, session *models.Session, req models.DepositRequest) (*models.Transaction, error)
}

// AuthAPI is the external auth service. It only supplies a session.
type AuthAPI interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.Session, error)
	Me(ctx context.Context, session *models.Session) (*models.User, error)
}

// SessionRepository stores the session issued by the auth service.
type SessionRepository interface {
	GetSession(ctx context.Context, key string) (*models.Session, error)
	SetSession(ctx context.Context, key string, session *models.Session) error
	ClearSession(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
