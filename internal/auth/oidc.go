package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDC verifies ID tokens of an external identity provider.
type OIDC struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDC discovers the provider's signing keys. For Firebase the issuer is
// https://securetoken.google.com/<project> and the audience is the project id.
func NewOIDC(ctx context.Context, issuer, audience string) (*OIDC, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	return NewOIDCWithVerifier(provider.Verifier(&oidc.Config{ClientID: audience})), nil
}

func NewOIDCWithVerifier(v *oidc.IDTokenVerifier) *OIDC {
	return &OIDC{verifier: v}
}

type idClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (o *OIDC) Verify(ctx context.Context, raw string) (Identity, error) {
	token, err := o.verifier.Verify(ctx, raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims idClaims
	if err := token.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role := claims.Role
	if role == "" {
		role = RoleUser
	}
	return Identity{UserID: token.Subject, Email: claims.Email, Role: role}, nil
}
