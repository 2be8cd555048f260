package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
	ErrInvalidToken    = errors.New("invalid token")
)

// Session records an issued token so it can be revoked before it expires.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// SessionStore abstracts session persistence.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	// Get returns ErrSessionNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// TokenClaims is the identity carried inside an access token.
type TokenClaims struct {
	SessionID string
	UserID    string
	Username  string
	Roles     []authz.Role
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	Issue(claims TokenClaims) (string, error)
	Parse(token string) (TokenClaims, error)
	TTL() time.Duration
}
