package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"marketplace/internal/models"
)

func (c *Client) ListBookings(ctx context.Context, session *models.Session, filters models.BookingFilters) (*models.Page[models.Booking], error) {
	q := url.Values{}
	if filters.Status != "" {
		q.Set("status", strings.ToLower(string(filters.Status)))
	}
	if filters.Date != "" {
		q.Set("date", filters.Date)
	}
	if filters.ServiceID != "" {
		q.Set("serviceId", filters.ServiceID)
	}
	if filters.Page > 0 {
		q.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.Limit > 0 {
		q.Set("limit", strconv.Itoa(filters.Limit))
	}

	var bookings []models.Booking
	pagination, err := c.call(ctx, request{
		name: "bookings.list", method: http.MethodGet, path: "/bookings", query: q, session: session,
	}, &bookings)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.Booking]{Items: bookings, Pagination: pagination}, nil
}

func (c *Client) GetBooking(ctx context.Context, session *models.Session, id string) (*models.Booking, error) {
	var b models.Booking
	if _, err := c.call(ctx, request{
		name: "bookings.get", method: http.MethodGet, path: "/bookings/" + url.PathEscape(id), session: session,
	}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) CreateBooking(ctx context.Context, session *models.Session, req models.CreateBookingRequest) (*models.Booking, error) {
	var b models.Booking
	if _, err := c.call(ctx, request{
		name: "bookings.create", method: http.MethodPost, path: "/booking", body: req, session: session,
	}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) ConfirmBooking(ctx context.Context, session *models.Session, id string) (*models.Booking, error) {
	var b models.Booking
	if _, err := c.call(ctx, request{
		name: "bookings.confirm", method: http.MethodPatch, path: "/bookings/" + url.PathEscape(id) + "/confirm", session: session,
	}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) CancelBooking(ctx context.Context, session *models.Session, id string, req models.CancelBookingRequest) (*models.Booking, error) {
	var b models.Booking
	if _, err := c.call(ctx, request{
		name: "bookings.cancel", method: http.MethodPatch, path: "/bookings/" + url.PathEscape(id) + "/cancel", body: req, session: session,
	}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CheckAvailability asks which start times are still free for a service on date.
func (c *Client) CheckAvailability(ctx context.Context, session *models.Session, serviceID string, date models.Date) (*models.Availability, error) {
	var a models.Availability
	if _, err := c.call(ctx, request{
		name:    "bookings.availability",
		method:  http.MethodGet,
		path:    "/bookings/service/" + url.PathEscape(serviceID) + "/availability",
		query:   url.Values{"date": {date.String()}},
		session: session,
	}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
