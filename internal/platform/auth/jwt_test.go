package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	userports "github.com/Apurer/go-gin-commerce-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewIssuer("s3cret", time.Hour)
	require.NoError(t, err)

	expires := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token, err := issuer.Issue(userports.TokenClaims{
		SessionID: "sess-1",
		UserID:    "user-1",
		Username:  "alice",
		Roles:     []authz.Role{authz.RoleEmployee, authz.RoleAdmin},
		ExpiresAt: expires,
	})
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "sess-1", claims.SessionID)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, []authz.Role{authz.RoleEmployee, authz.RoleAdmin}, claims.Roles)
	require.True(t, claims.ExpiresAt.Equal(expires))
}

func TestIssuer_RejectsForeignAndExpiredTokens(t *testing.T) {
	issuer, err := NewIssuer("s3cret", time.Hour)
	require.NoError(t, err)
	other, err := NewIssuer("different", time.Hour)
	require.NoError(t, err)

	token, err := other.Issue(userports.TokenClaims{SessionID: "s", UserID: "u"})
	require.NoError(t, err)
	_, err = issuer.Parse(token)
	require.Error(t, err)

	expired, err := issuer.Issue(userports.TokenClaims{SessionID: "s", UserID: "u", ExpiresAt: time.Now().Add(-time.Minute)})
	require.NoError(t, err)
	_, err = issuer.Parse(expired)
	require.Error(t, err)

	_, err = issuer.Parse("not-a-token")
	require.Error(t, err)
}

func TestNewIssuer_Defaults(t *testing.T) {
	_, err := NewIssuer("  ", time.Hour)
	require.ErrorIs(t, err, ErrEmptySecret)

	issuer, err := NewIssuer("x", 0)
	require.NoError(t, err)
	require.Equal(t, DefaultTTL, issuer.TTL())
}
