package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HMAC issues and verifies HS256 tokens signed with a shared secret.
type HMAC struct {
	secret []byte
	now    func() time.Time
}

func NewHMAC(secret string) *HMAC {
	return &HMAC{secret: []byte(secret), now: time.Now}
}

func (h *HMAC) Issue(id Identity, ttl time.Duration) (string, error) {
	role := id.Role
	if role == "" {
		role = RoleUser
	}
	claims := jwt.MapClaims{
		"sub":   id.UserID,
		"email": id.Email,
		"role":  role,
		"exp":   h.now().Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (h *HMAC) Verify(_ context.Context, raw string) (Identity, error) {
	token, err := jwt.Parse(raw,
		func(t *jwt.Token) (interface{}, error) { return h.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(h.now),
	)
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	// Older tokens carry the subject as userId.
	subject, _ := claims["sub"].(string)
	if strings.TrimSpace(subject) == "" {
		subject, _ = claims["userId"].(string)
	}
	if strings.TrimSpace(subject) == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		role = RoleUser
	}
	return Identity{UserID: subject, Email: email, Role: role}, nil
}
