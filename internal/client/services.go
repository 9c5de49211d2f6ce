package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"marketplace/internal/models"
)

const catalogCachePrefix = "catalog:"

func (c *Client) ListServices(ctx context.Context, session *models.Session, filters models.ServiceFilters) ([]models.Service, error) {
	q := url.Values{}
	if filters.Category != "" {
		q.Set("category", string(filters.Category))
	}
	if filters.Search != "" {
		q.Set("search", filters.Search)
	}
	if filters.IsActive != nil {
		q.Set("isActive", strconv.FormatBool(*filters.IsActive))
	}

	cacheKey := catalogCachePrefix + "services:" + q.Encode()
	var services []models.Service
	if c.readCache(ctx, cacheKey, &services) {
		return services, nil
	}

	if _, err := c.call(ctx, request{
		name: "services.list", method: http.MethodGet, path: "/services", query: q, session: session,
	}, &services); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, services)
	return services, nil
}

func (c *Client) GetService(ctx context.Context, session *models.Session, id string) (*models.Service, error) {
	cacheKey := catalogCachePrefix + "service:" + id
	var s models.Service
	if c.readCache(ctx, cacheKey, &s) {
		return &s, nil
	}

	if _, err := c.call(ctx, request{
		name: "services.get", method: http.MethodGet, path: "/services/" + url.PathEscape(id), session: session,
	}, &s); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, s)
	return &s, nil
}

// FetchService reads a service from the API, skipping the catalog cache.
// The fresh copy replaces the cached one.
func (c *Client) FetchService(ctx context.Context, session *models.Session, id string) (*models.Service, error) {
	var s models.Service
	if _, err := c.call(ctx, request{
		name: "services.get", method: http.MethodGet, path: "/services/" + url.PathEscape(id), session: session,
	}, &s); err != nil {
		return nil, err
	}
	c.writeCache(ctx, catalogCachePrefix+"service:"+id, s)
	return &s, nil
}

// ListMyServices returns the provider's own listings. It is never cached.
func (c *Client) ListMyServices(ctx context.Context, session *models.Session) ([]models.Service, error) {
	var services []models.Service
	if _, err := c.call(ctx, request{
		name: "services.mine", method: http.MethodGet, path: "/services/my", session: session,
	}, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *Client) CreateService(ctx context.Context, session *models.Session, input models.ServiceInput) (*models.Service, error) {
	var s models.Service
	if _, err := c.call(ctx, request{
		name: "services.create", method: http.MethodPost, path: "/services", body: input, session: session,
	}, &s); err != nil {
		return nil, err
	}
	c.invalidateCatalog(ctx)
	return &s, nil
}

func (c *Client) UpdateService(ctx context.Context, session *models.Session, id string, input models.ServiceInput) (*models.Service, error) {
	var s models.Service
	if _, err := c.call(ctx, request{
		name: "services.update", method: http.MethodPut, path: "/services/" + url.PathEscape(id), body: input, session: session,
	}, &s); err != nil {
		return nil, err
	}
	c.invalidateCatalog(ctx)
	return &s, nil
}

func (c *Client) ToggleServiceStatus(ctx context.Context, session *models.Session, id string, status models.ServiceStatus) (*models.Service, error) {
	var s models.Service
	if _, err := c.call(ctx, request{
		name:    "services.status",
		method:  http.MethodPatch,
		path:    "/services/" + url.PathEscape(id) + "/status",
		body:    models.ServiceStatusRequest{Status: status},
		session: session,
	}, &s); err != nil {
		return nil, err
	}
	c.invalidateCatalog(ctx)
	return &s, nil
}

func (c *Client) DeleteService(ctx context.Context, session *models.Session, id string) error {
	var resp struct {
		Message string `json:"message"`
	}
	if _, err := c.call(ctx, request{
		name: "services.delete", method: http.MethodDelete, path: "/services/" + url.PathEscape(id), session: session,
	}, &resp); err != nil {
		return err
	}
	c.invalidateCatalog(ctx)
	return nil
}
