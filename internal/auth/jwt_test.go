package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"quizboard-service/internal/domain"
)

func TestIssueAndResolveBearer(t *testing.T) {
	p, err := NewJWTProvider("secret")
	require.NoError(t, err)

	token, err := p.Issue(domain.User{ID: "u1", DisplayName: "Alice"}, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/quiz", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	user, err := p.CurrentUser(r)
	require.NoError(t, err)
	require.Equal(t, domain.User{ID: "u1", DisplayName: "Alice"}, user)
}

func TestResolveFromCookie(t *testing.T) {
	p, _ := NewJWTProvider("secret")
	token, _ := p.Issue(domain.User{ID: "u2"}, time.Hour)

	r := httptest.NewRequest(http.MethodGet, "/quiz", nil)
	r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	user, err := p.CurrentUser(r)
	require.NoError(t, err)
	require.Equal(t, "u2", user.ID)
	require.Equal(t, "u2", user.DisplayName, "display name falls back to the id")
}

func TestRejectsMissingExpiredAndForeignTokens(t *testing.T) {
	p, _ := NewJWTProvider("secret")

	r := httptest.NewRequest(http.MethodGet, "/quiz", nil)
	_, err := p.CurrentUser(r)
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)

	past := time.Now().Add(-2 * time.Hour)
	p.now = func() time.Time { return past }
	expired, _ := p.Issue(domain.User{ID: "u1"}, time.Hour)
	p.now = time.Now
	r.Header.Set("Authorization", "Bearer "+expired)
	_, err = p.CurrentUser(r)
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)

	other, _ := NewJWTProvider("other-secret")
	foreign, _ := other.Issue(domain.User{ID: "u1"}, time.Hour)
	r.Header.Set("Authorization", "Bearer "+foreign)
	_, err = p.CurrentUser(r)
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	r.Header.Set("Authorization", "Bearer "+none)
	_, err = p.CurrentUser(r)
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestNewJWTProviderRequiresSecret(t *testing.T) {
	_, err := NewJWTProvider("")
	require.Error(t, err)
}
