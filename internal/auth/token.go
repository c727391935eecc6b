package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// Claims embeds the user's identity and the list of active role names at
// issue time. Permissions are deliberately never embedded: they are always
// re-derived from roles, so a catalog change cannot be exploited through a
// stale token.
type Claims struct {
	UserID     int64    `json:"user_id"`
	Email      string   `json:"email"`
	Roles      []string `json:"roles"`
	ActiveRole string   `json:"active_role,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and parses signed HS256 tokens.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenCodec constructs a codec. TTL defaults to two hours.
func NewTokenCodec(secret, issuer string, ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &TokenCodec{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// TTL exposes the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token for the user with the given role list.
func (c *TokenCodec) Issue(userID int64, email string, roles []string, activeRole string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(c.ttl)
	claims := Claims{
		UserID:     userID,
		Email:      email,
		Roles:      append([]string(nil), roles...),
		ActiveRole: activeRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates the signature and expiry. Any failure maps to the single
// UNAUTHENTICATED error; callers never learn why a token was rejected.
func (c *TokenCodec) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, shared.ErrUnauthenticated
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, shared.ErrUnauthenticated
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, shared.ErrUnauthenticated
	}
	return claims, nil
}
