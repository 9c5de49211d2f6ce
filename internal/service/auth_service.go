package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace/internal/client"
	"marketplace/internal/domain"
	"marketplace/internal/models"
	"marketplace/internal/validation"

	"github.com/rs/zerolog"
)

// AuthService obtains a session from the auth backend and keeps it in the
// session store under a profile name.
type AuthService struct {
	auth     domain.AuthAPI
	sessions domain.SessionRepository
	profile  string
	logger   *zerolog.Logger
}

func NewAuthService(auth domain.AuthAPI, sessions domain.SessionRepository, profile string, logger *zerolog.Logger) *AuthService {
	if profile == "" {
		profile = "default"
	}
	return &AuthService{
		auth:     auth,
		sessions: sessions,
		profile:  profile,
		logger:   logger,
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	user, err := s.auth.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	req := models.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	session, err := s.auth.Login(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if session == nil || session.Token == "" {
		return nil, errors.New("login: no session issued")
	}
	if !session.Role().Valid() {
		return nil, fmt.Errorf("login: unknown user type %q", session.User.Type)
	}

	if err := s.sessions.SetSession(ctx, s.profile, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	s.logger.Info().Str("user_id", session.User.ID).Str("role", string(session.Role())).Msg("Logged in")
	return session, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.ClearSession(ctx, s.profile)
}

// Current returns the stored session or ErrNoSession.
func (s *AuthService) Current(ctx context.Context) (*models.Session, error) {
	session, err := s.sessions.GetSession(ctx, s.profile)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil || session.Token == "" {
		return nil, ErrNoSession
	}
	return session, nil
}

// Me asks the backend who the session belongs to.
func (s *AuthService) Me(ctx context.Context, session *models.Session) (*models.User, error) {
	if session == nil {
		return nil, ErrNoSession
	}
	user, err := s.auth.Me(ctx, session)
	if err != nil {
		s.Expire(ctx, err)
		return nil, err
	}
	return user, nil
}

// Expire drops the stored session when err is a 401. It reports whether the
// session was dropped.
func (s *AuthService) Expire(ctx context.Context, err error) bool {
	if !errors.Is(err, client.ErrUnauthorized) {
		return false
	}
	if clearErr := s.sessions.ClearSession(ctx, s.profile); clearErr != nil {
		s.logger.Warn().Err(clearErr).Msg("Failed to clear expired session")
	}
	s.logger.Info().Str("profile", s.profile).Msg("Session expired")
	return true
}
