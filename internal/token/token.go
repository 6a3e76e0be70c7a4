// Package token issues and verifies the signed bearer tokens used as session
// credentials. Tokens are stateless: there is no server-side revocation, a
// logged-out token stays valid until its natural expiry unless the optional
// denylist is enabled.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mbaudry/moustass-web/internal/model"
)

// Verification failure kinds, mapped to 401 at the HTTP boundary.
var (
	// ErrMalformed indicates the token does not parse as a three-part JWT.
	ErrMalformed = errors.New("malformed token")
	// ErrExpired indicates a structurally valid token past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrInvalid indicates a bad signature or unexpected signing method.
	ErrInvalid = errors.New("invalid token")
)

// Claims carried by a session token.
type Claims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

// Principal converts verified claims into a principal.
func (c Claims) Principal() (model.Principal, error) {
	id, err := uuid.FromString(c.Subject)
	if err != nil {
		return model.Principal{}, ErrInvalid
	}
	return model.Principal{UserID: id, Role: c.Role}, nil
}

// Manager signs and verifies session tokens with a process-wide HS256 secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager constructs a Manager. ttl is the fixed token lifetime (24h in
// production configuration).
func NewManager(secret []byte, ttl time.Duration) *Manager {
	return &Manager{secret: secret, ttl: ttl}
}

// Issue creates a signed token for the given user with an embedded role and
// a random token id (jti). Returns the token and its expiry.
func (m *Manager) Issue(userID uuid.UUID, role model.Role) (string, time.Time, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now()
	exp := now.Add(m.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        jti.String(),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	return signed, exp, err
}

// Verify parses and validates a token string. Failures are classified as
// ErrMalformed, ErrExpired or ErrInvalid; freshness against the live user row
// is layered on top of this by the HTTP middleware.
func (m *Manager) Verify(tokenString string) (Claims, error) {
	if strings.Count(tokenString, ".") != 2 {
		return Claims{}, ErrMalformed
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalid
		}
		return m.secret, nil
	})
	switch {
	case err == nil && parsed.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, ErrMalformed
	default:
		return Claims{}, ErrInvalid
	}
}
