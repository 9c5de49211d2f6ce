package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"marketplace/internal/client"
	"marketplace/internal/models"
	"marketplace/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthService_LoginStoresSession(t *testing.T) {
	auth := new(mockAuth)
	store := repository.NewMemorySessionRepository(0)
	svc := NewAuthService(auth, store, "", newTestLogger())

	session := customerSession()
	auth.On("Login", mock.Anything, models.LoginRequest{Email: "ana@example.ao", Password: "segredo"}).Return(session, nil).Once()

	got, err := svc.Login(context.Background(), " ana@example.ao ", "segredo")
	require.NoError(t, err)
	assert.Equal(t, "tok-c", got.Token)

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, current.Role())

	require.NoError(t, svc.Logout(context.Background()))
	_, err = svc.Current(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestAuthService_LoginValidation(t *testing.T) {
	auth := new(mockAuth)
	svc := NewAuthService(auth, new(mockSessions), "default", newTestLogger())

	_, err := svc.Login(context.Background(), "not-an-email", "")
	assert.ElementsMatch(t, []string{"Informe um email válido", "Informe a senha"}, UserMessage(err, ""))
	auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestAuthService_LoginRejectsUnknownRole(t *testing.T) {
	auth := new(mockAuth)
	sessions := new(mockSessions)
	svc := NewAuthService(auth, sessions, "default", newTestLogger())

	auth.On("Login", mock.Anything, mock.Anything).Return(&models.Session{Token: "t", User: models.User{ID: "x", Type: "ADMIN"}}, nil).Once()

	_, err := svc.Login(context.Background(), "a@b.ao", "segredo")
	assert.Error(t, err)
	sessions.AssertNotCalled(t, "SetSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_MeExpiresOnUnauthorized(t *testing.T) {
	auth := new(mockAuth)
	sessions := new(mockSessions)
	svc := NewAuthService(auth, sessions, "work", newTestLogger())
	session := providerSession()

	auth.On("Me", mock.Anything, session).Return(nil, &client.APIError{StatusCode: http.StatusUnauthorized, Message: "Token inválido"}).Once()
	sessions.On("ClearSession", mock.Anything, "work").Return(nil).Once()

	_, err := svc.Me(context.Background(), session)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, []string{client.MsgSessionExpired}, UserMessage(err, ""))
	sessions.AssertExpectations(t)
}

func TestAuthService_ExpireIgnoresOtherErrors(t *testing.T) {
	sessions := new(mockSessions)
	svc := NewAuthService(new(mockAuth), sessions, "default", newTestLogger())

	assert.False(t, svc.Expire(context.Background(), errors.New("boom")))
	assert.False(t, svc.Expire(context.Background(), &client.APIError{StatusCode: http.StatusForbidden}))
	sessions.AssertNotCalled(t, "ClearSession", mock.Anything, mock.Anything)
}

func TestAuthService_Register(t *testing.T) {
	auth := new(mockAuth)
	svc := NewAuthService(auth, new(mockSessions), "default", newTestLogger())

	req := models.RegisterRequest{
		Name:            "Bruno Costa",
		Email:           "bruno@example.ao",
		NIF:             "987654321",
		Phone:           "912345678",
		Password:        "segredo1",
		ConfirmPassword: "segredo1",
		Type:            models.RoleProvider,
	}
	auth.On("Register", mock.Anything, req).Return(&models.User{ID: "u1", Type: models.RoleProvider}, nil).Once()

	user, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, user.IsProvider())

	req.Phone = "91234"
	_, err = svc.Register(context.Background(), req)
	assert.Equal(t, []string{"O telefone deve ter 9 dígitos"}, UserMessage(err, ""))
	auth.AssertNumberOfCalls(t, "Register", 1)
}
