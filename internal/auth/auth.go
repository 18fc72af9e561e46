// Package auth verifies bearer tokens and resolves them to an Identity.
package auth

import (
	"context"
	"errors"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller. UserID is the token subject and is
// used as the marketplace user id.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type Verifier interface {
	Verify(ctx context.Context, raw string) (Identity, error)
}

type chain []Verifier

// Chain returns a Verifier that accepts a token if any of verifiers does,
// trying them in order.
func Chain(verifiers ...Verifier) Verifier {
	return chain(verifiers)
}

func (c chain) Verify(ctx context.Context, raw string) (Identity, error) {
	errs := make([]error, 0, len(c))
	for _, v := range c {
		id, err := v.Verify(ctx, raw)
		if err == nil {
			return id, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Identity{}, ErrInvalidToken
	}
	return Identity{}, errors.Join(errs...)
}
