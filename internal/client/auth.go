package client

import (
	"context"
	"errors"
	"net/http"

	"marketplace/internal/models"
)

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var u models.User
	if _, err := c.call(ctx, request{
		name: "auth.register", method: http.MethodPost, path: "/users", body: req,
	}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	var s models.Session
	if _, err := c.call(ctx, request{
		name: "auth.login", method: http.MethodPost, path: "/auth/login", body: req,
	}, &s); err != nil {
		return nil, err
	}
	if s.Token == "" {
		return nil, errors.New("login response carried no token")
	}
	return &s, nil
}

func (c *Client) Me(ctx context.Context, session *models.Session) (*models.User, error) {
	var u models.User
	if _, err := c.call(ctx, request{
		name: "auth.me", method: http.MethodGet, path: "/auth/me", session: session,
	}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
