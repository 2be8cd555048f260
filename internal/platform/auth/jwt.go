// Package auth issues bearer tokens and turns them back into authenticated actors for gin routes.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	userports "github.com/Apurer/go-gin-commerce-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

// DefaultTTL is the token lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

const issuerName = "go-gin-commerce-api"

var (
	ErrEmptySecret = errors.New("jwt secret is empty")
	errBadClaims   = errors.New("token claims are malformed")
)

var _ userports.TokenIssuer = (*Issuer)(nil)

type claims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// Issuer signs HS256 access tokens. The JWT ID is the session ID.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer validates the secret. A non-positive ttl falls back to DefaultTTL.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

func (i *Issuer) Issue(c userports.TokenClaims) (string, error) {
	expiresAt := c.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = i.now().Add(i.ttl)
	}
	roles := make([]string, 0, len(c.Roles))
	for _, role := range c.Roles {
		roles = append(roles, string(role))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: c.Username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        c.SessionID,
			Subject:   c.UserID,
			Issuer:    issuerName,
			IssuedAt:  jwt.NewNumericDate(i.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, issuer and expiry.
func (i *Issuer) Parse(raw string) (userports.TokenClaims, error) {
	parsed := &claims{}
	_, err := jwt.ParseWithClaims(raw, parsed, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return userports.TokenClaims{}, err
	}
	if parsed.ID == "" || parsed.Subject == "" {
		return userports.TokenClaims{}, errBadClaims
	}
	roles := make([]authz.Role, 0, len(parsed.Roles))
	for _, raw := range parsed.Roles {
		if role, ok := authz.ParseRole(raw); ok {
			roles = append(roles, role)
		}
	}
	return userports.TokenClaims{
		SessionID: parsed.ID,
		UserID:    parsed.Subject,
		Username:  parsed.Username,
		Roles:     roles,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}
