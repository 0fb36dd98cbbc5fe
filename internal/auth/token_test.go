package auth

import (
	"testing"
	"time"

	dom "TodoAPI/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate_Success(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("super-secret", time.Hour)
	u := dom.User{ID: "5b0a6f1e-1f5a-4a63-9d55-1a1d1c8e2f10", Email: "kosar@example.com"}

	tok, err := iss.Issue(u)
	require.NoError(t, err)

	claims, err := iss.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.ID)
	assert.Equal(t, u.Email, claims.Email)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestValidate_Expired(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("secret", time.Minute)
	tok, err := iss.Issue(dom.User{ID: "u1", Email: "a@b.c"})
	require.NoError(t, err)

	iss.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = iss.Validate(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer("right-secret", time.Hour).Issue(dom.User{ID: "u2"})
	require.NoError(t, err)

	_, err = NewIssuer("wrong-secret", time.Hour).Validate(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer("k", time.Hour).Validate("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsNonHMAC(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		ID: "u3",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer("k", time.Hour).Validate(s)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewIssuer_DefaultTTL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, defaultTokenTTL, NewIssuer("k", 0).TTL())
}
