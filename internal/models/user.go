package models

import (
	"fmt"
	"strings"
)

// Role is the viewer's user type. It never changes for a given user.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleProvider Role = "PROVIDER"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleProvider
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

type UserStatus string

const (
	UserActive    UserStatus = "ACTIVE"
	UserInactive  UserStatus = "INACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
)

type User struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Phone  string     `json:"phone"`
	NIF    string     `json:"nif"`
	Type   Role       `json:"type"`
	Status UserStatus `json:"status"`
}

func (u *User) IsProvider() bool {
	return u != nil && u.Type == RoleProvider
}

// Session is the authenticated context passed explicitly to every operation.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (s *Session) Role() Role {
	if s == nil {
		return ""
	}
	return s.User.Type
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the sign-up payload. ConfirmPassword is checked locally
// and never sent.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,min=3"`
	Email           string `json:"email" validate:"required,email"`
	NIF             string `json:"nif" validate:"required,len=9,numeric"`
	Phone           string `json:"phone" validate:"required,len=9,numeric"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"-" validate:"eqfield=Password"`
	Type            Role   `json:"type" validate:"required,oneof=CUSTOMER PROVIDER"`
}
