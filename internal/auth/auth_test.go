package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHMACRoundTrip(t *testing.T) {
	h := NewHMAC("secret")
	token, err := h.Issue(Identity{UserID: "u1", Email: "ada@example.com"}, time.Minute)
	require.NoError(t, err)

	id, err := h.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "u1", Email: "ada@example.com", Role: RoleUser}, id)
	assert.False(t, id.IsAdmin())
}

func TestHMACRejects(t *testing.T) {
	h := NewHMAC("secret")
	ctx := context.Background()

	expired, err := h.Issue(Identity{UserID: "u1"}, -time.Minute)
	require.NoError(t, err)
	_, err = h.Verify(ctx, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := NewHMAC("other").Issue(Identity{UserID: "u1"}, time.Minute)
	require.NoError(t, err)
	_, err = h.Verify(ctx, foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = h.Verify(ctx, noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = h.Verify(ctx, noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = h.Verify(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHMACAcceptsLegacyUserIDClaim(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "legacy",
		"role":   RoleAdmin,
		"exp":    time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	id, err := NewHMAC("secret").Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "legacy", id.UserID)
	assert.True(t, id.IsAdmin())
}

func TestOIDCVerify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	const issuer = "https://securetoken.google.com/farmdirect-test"
	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key.Public()}}
	o := NewOIDCWithVerifier(oidc.NewVerifier(issuer, keySet, &oidc.Config{ClientID: "farmdirect-test"}))

	sign := func(claims jwt.MapClaims) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
		require.NoError(t, err)
		return raw
	}
	now := time.Now()

	id, err := o.Verify(context.Background(), sign(jwt.MapClaims{
		"iss":   issuer,
		"aud":   "farmdirect-test",
		"sub":   "firebase-uid",
		"email": "grower@example.com",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}))
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "firebase-uid", Email: "grower@example.com", Role: RoleUser}, id)

	_, err = o.Verify(context.Background(), sign(jwt.MapClaims{
		"iss": issuer,
		"aud": "someone-else",
		"sub": "firebase-uid",
		"exp": now.Add(time.Hour).Unix(),
	}))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type stubVerifier struct {
	id  Identity
	err error
}

func (s stubVerifier) Verify(context.Context, string) (Identity, error) {
	return s.id, s.err
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	reject := stubVerifier{err: ErrInvalidToken}
	accept := stubVerifier{id: Identity{UserID: "u1"}}

	id, err := Chain(reject, accept).Verify(ctx, "raw")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)

	_, err = Chain(reject, reject).Verify(ctx, "raw")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Chain().Verify(ctx, "raw")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAdminCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	creds := AdminCredentials{Email: "ops@farmdirect.test", PasswordHash: string(hash)}

	id, err := creds.Authenticate(" OPS@farmdirect.test ", "hunter2")
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())

	_, err = creds.Authenticate("ops@farmdirect.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = creds.Authenticate("someone@farmdirect.test", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = AdminCredentials{}.Authenticate("ops@farmdirect.test", "hunter2")
	assert.ErrorIs(t, err, ErrAdminDisabled)
}
