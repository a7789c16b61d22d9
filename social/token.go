// social/token.go
package social

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the claim set carried by an access token. The subject is
// re-read from the user store on every verification, so a token whose
// subject no longer resolves is rejected even if its signature is good.
type Identity struct {
	ID       string
	Username string
	Email    string
}

type accessClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenManager mints and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *TokenManager) Mint(user *User) (string, error) {
	now := m.now().UTC()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Username: user.Username,
		Email:    user.Email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses and validates a raw token. Every failure collapses to
// CodeUnauthorized; callers get no detail about why a credential was
// rejected.
func (m *TokenManager) Verify(raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, NewError(CodeUnauthorized, "credential is required")
	}
	var claims accessClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Identity{}, WrapError(CodeUnauthorized, "invalid credential", err)
	}
	if claims.Subject == "" {
		return Identity{}, NewError(CodeUnauthorized, "credential has no subject")
	}
	return Identity{
		ID:       claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}
