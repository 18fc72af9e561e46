package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminDisabled      = errors.New("admin login disabled")
)

// AdminCredentials is the single operator account configured through the
// environment.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

func (a AdminCredentials) Enabled() bool {
	return a.Email != "" && a.PasswordHash != ""
}

func (a AdminCredentials) Authenticate(email, password string) (Identity, error) {
	if !a.Enabled() {
		return Identity{}, ErrAdminDisabled
	}
	if !strings.EqualFold(strings.TrimSpace(email), a.Email) {
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{UserID: "admin:" + strings.ToLower(a.Email), Email: a.Email, Role: RoleAdmin}, nil
}
