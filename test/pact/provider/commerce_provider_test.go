//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pacttest "github.com/Apurer/go-gin-commerce-api/test/pact"

	commerceserver "github.com/Apurer/go-gin-commerce-api/go"
	"github.com/Apurer/go-gin-commerce-api/internal/app/api"
	catalogtypes "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/application/types"
	suppliertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/application/types"
	usertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/users/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/platform/auth"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCommerceProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateNoUsers: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateCustomerExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedCustomer(t)
			}
			return nil, nil
		},
		pacttest.StateShowroomProduct: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedCustomer(t)
				app.seedShowroomProduct(t)
			}
			return nil, nil
		},
		pacttest.StateProductMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedCustomer(t)
			}
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp serves a fresh in-memory backend per provider state. Requests that carry
// the consumer's placeholder token are re-signed for the seeded customer.
type contractProviderApp struct {
	mu         sync.RWMutex
	components *api.Components
	router     http.Handler
	token      string
	server     *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(t)
	app.server = httptest.NewServer(http.HandlerFunc(app.serveHTTP))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) serveHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	router, token := a.router, a.token
	a.mu.RUnlock()
	if token != "" && r.Header.Get("Authorization") == "Bearer "+pacttest.PlaceholderToken {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, r)
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	issuer, err := auth.NewIssuer("pact-provider-secret", time.Hour)
	require.NoError(t, err)
	components := api.Build(api.MemoryStorage(), issuer, api.BuildOptions{})

	router := commerceserver.NewRouter(components.Handlers(), components.Authenticator(), components.Gate)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.components = components
	a.router = router
	a.token = ""
}

func (a *contractProviderApp) seedCustomer(t testing.TB) {
	t.Helper()
	ctx := context.Background()
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.components.Users.Register(ctx, usertypes.CustomerInput{
		Username: pacttest.CustomerUsername,
		Password: pacttest.CustomerPassword,
		Profile: usertypes.ProfileInput{
			FirstName: "Pact",
			LastName:  "Customer",
			Email:     "pact.customer@example.com",
			Phone:     "+38640333444",
			Address:   "Pact street 2",
		},
	})
	require.NoError(t, err)
	result, err := a.components.Users.Login(ctx, pacttest.CustomerUsername, pacttest.CustomerPassword)
	require.NoError(t, err)
	a.token = result.Token
}

func (a *contractProviderApp) seedShowroomProduct(t testing.TB) {
	t.Helper()
	ctx := context.Background()
	a.mu.RLock()
	defer a.mu.RUnlock()
	supplier, err := a.components.Suppliers.Create(ctx, suppliertypes.SupplierInput{Name: "Pact Supplies", Email: "supplies@example.pact", Phone: "011"})
	require.NoError(t, err)
	_, err = a.components.Catalog.Create(ctx, catalogtypes.ProductInput{
		Title:          "Desk lamp",
		Description:    "Brass lamp",
		Price:          decimal.NewFromInt(25),
		Condition:      "new",
		State:          "showroom",
		ColorVariation: map[string]int{"white": 3},
		SupplierID:     supplier.ID,
		ImageCount:     4,
	})
	require.NoError(t, err)
}
