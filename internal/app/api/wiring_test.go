package api

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	usertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/users/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/platform/auth"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

func TestBuild_MemoryStorageAuthenticatesRegisteredCustomer(t *testing.T) {
	issuer, err := auth.NewIssuer("wiring-secret", time.Hour)
	require.NoError(t, err)
	components := Build(MemoryStorage(), issuer, BuildOptions{})
	ctx := context.Background()

	_, err = components.Users.Register(ctx, usertypes.CustomerInput{
		Username: "mia",
		Password: "secret",
		Profile:  usertypes.ProfileInput{FirstName: "Mia", LastName: "Novak", Email: "mia@example.com", Phone: "041", Address: "Main 1"},
	})
	require.NoError(t, err)
	login, err := components.Users.Login(ctx, "mia", "secret")
	require.NoError(t, err)

	actor, _, err := components.Authenticator().Authenticate(ctx, login.Token)
	require.NoError(t, err)
	require.Equal(t, []authz.Role{authz.RoleCustomer}, actor.Roles)
	require.NotNil(t, components.CheckoutSteps)
}

func TestOpenStorage_EmptyDSNFallsBackToMemory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage, cleanup := OpenStorage(context.Background(), StorageConfig{}, logger)
	defer cleanup()
	require.NotNil(t, storage.Users)
	require.NotNil(t, storage.Tx)
	require.NotNil(t, BuildCheckoutSteps(storage, nil))
}
