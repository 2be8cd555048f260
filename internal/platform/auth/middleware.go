package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	userports "github.com/Apurer/go-gin-commerce-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
	apierrors "github.com/Apurer/go-gin-commerce-api/internal/shared/errors"
)

const (
	actorKey   = "auth.actor"
	sessionKey = "auth.session"
)

// Authenticator resolves a bearer token to a live account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (authz.Actor, userports.TokenClaims, error)
}

// Middleware rejects requests without a valid bearer token and stores the actor on the context.
func Middleware(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apierrors.Respond(c, apierrors.ErrUnauthorized.WithDetail("bearer token required"))
			return
		}
		actor, claims, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			apierrors.Respond(c, apierrors.ErrUnauthorized.WithDetail("invalid or expired token"))
			return
		}
		c.Set(actorKey, actor)
		c.Set(sessionKey, claims.SessionID)
		c.Next()
	}
}

// RequireRole lets admins and holders of role through. Everyone else gets 401.
func RequireRole(gate *authz.Gate, role authz.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			apierrors.Respond(c, apierrors.ErrUnauthorized)
			return
		}
		if err := gate.Permit(actor, authz.RequireRole(role)); err != nil {
			apierrors.Respond(c, apierrors.ErrUnauthorized.WithDetail(err.Error()))
			return
		}
		c.Next()
	}
}

// ActorFromContext returns the actor stored by Middleware.
func ActorFromContext(c *gin.Context) (authz.Actor, bool) {
	value, exists := c.Get(actorKey)
	if !exists {
		return authz.Actor{}, false
	}
	actor, ok := value.(authz.Actor)
	return actor, ok
}

// SessionIDFromContext returns the session behind the current token.
func SessionIDFromContext(c *gin.Context) string {
	return c.GetString(sessionKey)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
