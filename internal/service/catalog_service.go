package service

import (
	"context"
	"fmt"

	"marketplace/internal/dashboard"
	"marketplace/internal/domain"
	"marketplace/internal/events"
	"marketplace/internal/models"
	"marketplace/internal/validation"

	"github.com/rs/zerolog"
)

type CatalogService struct {
	catalog  domain.CatalogAPI
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewCatalogService(catalog domain.CatalogAPI, eventBus domain.EventPublisher, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{
		catalog:  catalog,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *CatalogService) List(ctx context.Context, session *models.Session, filters models.ServiceFilters) ([]models.Service, error) {
	services, err := s.catalog.ListServices(ctx, session, filters)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// Browse lists active services and applies the catalog page search box,
// category picker and price order.
func (s *CatalogService) Browse(ctx context.Context, session *models.Session, f dashboard.ServiceFilter) ([]models.Service, error) {
	active := true
	filters := models.ServiceFilters{IsActive: &active, Search: f.Search}
	if f.Category.Valid() {
		filters.Category = f.Category
	}

	services, err := s.List(ctx, session, filters)
	if err != nil {
		return nil, err
	}
	return dashboard.FilterServices(services, f), nil
}

func (s *CatalogService) Get(ctx context.Context, session *models.Session, id string) (*models.Service, error) {
	svc, err := s.catalog.GetService(ctx, session, id)
	if err != nil {
		return nil, fmt.Errorf("get service %s: %w", id, err)
	}
	return svc, nil
}

// Fresh reads the service past the catalog cache. Booking uses it so the
// balance gate sees the current price.
func (s *CatalogService) Fresh(ctx context.Context, session *models.Session, id string) (*models.Service, error) {
	svc, err := s.catalog.FetchService(ctx, session, id)
	if err != nil {
		return nil, fmt.Errorf("fetch service %s: %w", id, err)
	}
	return svc, nil
}

// ListMine lists the provider's own services, active or not.
func (s *CatalogService) ListMine(ctx context.Context, session *models.Session) ([]models.Service, error) {
	if err := requireProvider(session); err != nil {
		return nil, err
	}
	services, err := s.catalog.ListMyServices(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("list my services: %w", err)
	}
	return services, nil
}

func (s *CatalogService) Create(ctx context.Context, session *models.Session, input models.ServiceInput) (*models.Service, error) {
	if err := requireProvider(session); err != nil {
		return nil, err
	}
	input.ProviderID = session.User.ID
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	svc, err := s.catalog.CreateService(ctx, session, input)
	if err != nil {
		s.logger.Error().Err(err).Str("provider_id", input.ProviderID).Msg("Failed to create service")
		return nil, err
	}
	s.publishEvent(svc, "created")
	return svc, nil
}

func (s *CatalogService) Update(ctx context.Context, session *models.Session, id string, input models.ServiceInput) (*models.Service, error) {
	if err := requireProvider(session); err != nil {
		return nil, err
	}
	input.ProviderID = session.User.ID
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	svc, err := s.catalog.UpdateService(ctx, session, id, input)
	if err != nil {
		s.logger.Error().Err(err).Str("service_id", id).Msg("Failed to update service")
		return nil, err
	}
	s.publishEvent(svc, "updated")
	return svc, nil
}

// ToggleStatus flips a listing between ACTIVE and INACTIVE.
func (s *CatalogService) ToggleStatus(ctx context.Context, session *models.Session, svc *models.Service) (*models.Service, error) {
	if err := requireProvider(session); err != nil {
		return nil, err
	}

	next := models.ServiceActive
	if svc.IsActive() {
		next = models.ServiceInactive
	}

	updated, err := s.catalog.ToggleServiceStatus(ctx, session, svc.ID, next)
	if err != nil {
		s.logger.Error().Err(err).Str("service_id", svc.ID).Str("status", string(next)).Msg("Failed to change service status")
		return nil, err
	}
	s.publishEvent(updated, "status")
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, session *models.Session, id string) error {
	if err := requireProvider(session); err != nil {
		return err
	}
	if err := s.catalog.DeleteService(ctx, session, id); err != nil {
		s.logger.Error().Err(err).Str("service_id", id).Msg("Failed to delete service")
		return err
	}
	s.publishEvent(&models.Service{ID: id}, "deleted")
	return nil
}

func (s *CatalogService) publishEvent(svc *models.Service, action string) {
	if s.eventBus == nil || svc == nil {
		return
	}
	payload := events.ServicePayload{ServiceID: svc.ID, Action: action, Status: string(svc.Status)}
	if err := s.eventBus.PublishJSON(events.EventServiceChanged, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", events.EventServiceChanged).Msg("Failed to publish service event")
	}
}

func requireProvider(session *models.Session) error {
	if session == nil {
		return ErrNoSession
	}
	if session.Role() != models.RoleProvider {
		return ErrProviderOnly
	}
	return nil
}
