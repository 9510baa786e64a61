package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quizboard-service/internal/domain"
)

// TokenCookie is read when no Authorization header is present.
const TokenCookie = "token"

// Claims carries the user identity: sub is the user ID, name the display name.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTProvider resolves the current user from an HS256 token.
type JWTProvider struct {
	secret []byte
	now    func() time.Time
}

func NewJWTProvider(secret string) (*JWTProvider, error) {
	if secret == "" {
		return nil, errors.New("jwt secret not configured")
	}
	return &JWTProvider{secret: []byte(secret), now: time.Now}, nil
}

// CurrentUser returns domain.ErrNotAuthenticated (possibly wrapped) when the
// request has no valid token.
func (p *JWTProvider) CurrentUser(r *http.Request) (domain.User, error) {
	raw := bearerToken(r.Header.Get("Authorization"))
	if raw == "" {
		if c, err := r.Cookie(TokenCookie); err == nil {
			raw = c.Value
		}
	}
	if raw == "" {
		return domain.User{}, domain.ErrNotAuthenticated
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrNotAuthenticated, err)
	}
	if !token.Valid || claims.Subject == "" {
		return domain.User{}, domain.ErrNotAuthenticated
	}

	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	return domain.User{ID: claims.Subject, DisplayName: name}, nil
}

// Issue signs a token for user that expires after ttl.
func (p *JWTProvider) Issue(user domain.User, ttl time.Duration) (string, error) {
	now := p.now()
	claims := Claims{
		Name: user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

type userKey struct{}

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the user stored by WithUser.
func UserFrom(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey{}).(domain.User)
	return user, ok
}
