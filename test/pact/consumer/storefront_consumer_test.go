//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/go-gin-commerce-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type userPayload struct {
	ID       string   `json:"_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type productPayload struct {
	ID    string  `json:"_id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	State string  `json:"state"`
}

type apiError struct {
	status  int
	message string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.message, e.status)
}

func TestStorefrontContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	problemContentType := matchers.S("application/problem+json")
	bearer := matchers.S("Bearer " + pacttest.PlaceholderToken)
	userMatcher := func(username string) matchers.Map {
		return matchers.Map{
			"_id":      matchers.Like("7d4c2a8e-0000-4000-8000-000000000001"),
			"username": matchers.S(username),
			"roles":    matchers.ArrayMinLike("Customer", 1),
		}
	}

	pact.AddInteraction().
		Given(pacttest.StateNoUsers).
		UponReceiving("a customer registration").
		WithRequest("POST", "/auth/register", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExampleRegistration())
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"message": matchers.Like("Customer " + pacttest.NewUsername + " was created"),
				"user":    userMatcher(pacttest.NewUsername),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateCustomerExists).
		UponReceiving("a customer login").
		WithRequest("POST", "/auth/login", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(map[string]string{"username": pacttest.CustomerUsername, "password": pacttest.CustomerPassword})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"message": matchers.S("Login successful"),
				"token":   matchers.Like("eyJhbGciOiJIUzI1NiJ9.e30.signature"),
				"user":    userMatcher(pacttest.CustomerUsername),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateShowroomProduct).
		UponReceiving("a request for the showroom").
		WithRequest("GET", "/products/showroom", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"message": matchers.Like("success"),
				"products": matchers.ArrayMinLike(matchers.Map{
					"_id":   matchers.Like("c0ffee00-0000-4000-8000-000000000002"),
					"title": matchers.Like("Desk lamp"),
					"price": matchers.Like(25),
					"state": matchers.S("showroom"),
				}, 1),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateProductMissing).
		UponReceiving("a request for a missing product").
		WithRequest("GET", "/products/"+pacttest.MissingProductID, func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"message": matchers.S("Product not found"),
				"status":  matchers.Like(http.StatusNotFound),
			})
		})

	pact.AddInteraction().
		UponReceiving("a showroom request without a token").
		WithRequest("GET", "/products/showroom").
		WillRespondWith(http.StatusUnauthorized, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"message": matchers.S("Unauthorized"),
				"status":  matchers.Like(http.StatusUnauthorized),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newStorefrontClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		registered, err := client.Register(ctx, pacttest.ExampleRegistration())
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}
		if registered.Username != pacttest.NewUsername {
			return fmt.Errorf("expected %s, got %+v", pacttest.NewUsername, registered)
		}

		token, err := client.Login(ctx, pacttest.CustomerUsername, pacttest.CustomerPassword)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		if token == "" {
			return fmt.Errorf("expected a token")
		}

		products, err := client.Showroom(ctx, pacttest.PlaceholderToken)
		if err != nil {
			return fmt.Errorf("showroom: %w", err)
		}
		if len(products) == 0 || products[0].State != "showroom" {
			return fmt.Errorf("expected showroom products, got %+v", products)
		}

		if _, err := client.Product(ctx, pacttest.PlaceholderToken, pacttest.MissingProductID); !isStatus(err, http.StatusNotFound) {
			return fmt.Errorf("expected 404 for %s, got %v", pacttest.MissingProductID, err)
		}
		if _, err := client.Showroom(ctx, ""); !isStatus(err, http.StatusUnauthorized) {
			return fmt.Errorf("expected 401 without token, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

func isStatus(err error, status int) bool {
	apiErr, ok := err.(apiError)
	return ok && apiErr.status == status
}

type storefrontClient struct {
	baseURL    string
	httpClient *http.Client
}

func newStorefrontClient(config pactconsumer.MockServerConfig) *storefrontClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &storefrontClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *storefrontClient) Register(ctx context.Context, body map[string]any) (*userPayload, error) {
	var out struct {
		User userPayload `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", body, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *storefrontClient) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *storefrontClient) Showroom(ctx context.Context, token string) ([]productPayload, error) {
	var out struct {
		Products []productPayload `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/showroom", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *storefrontClient) Product(ctx context.Context, token, id string) (*productPayload, error) {
	var out struct {
		Product productPayload `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/"+id, token, nil, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (c *storefrontClient) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var problem struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(res.Body).Decode(&problem)
		return apiError{status: res.StatusCode, message: problem.Message}
	}
	return json.NewDecoder(res.Body).Decode(out)
}
