//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "commerce-api"
	ConsumerName = "storefront"

	StateNoUsers         = "no users are registered"
	StateCustomerExists  = "customer pact-customer exists"
	StateShowroomProduct = "a showroom product exists"
	StateProductMissing  = "no product with id missing-product"
)

const (
	CustomerUsername = "pact-customer"
	CustomerPassword = "pact-pass"
	NewUsername      = "pact-newcomer"
	MissingProductID = "missing-product"

	// PlaceholderToken is what the consumer sends. Provider verification swaps it for a
	// token issued to the seeded customer.
	PlaceholderToken = "pact-token"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleRegistration is the body the storefront posts to create a customer.
func ExampleRegistration() map[string]any {
	return map[string]any{
		"username":  NewUsername,
		"password":  CustomerPassword,
		"firstName": "Pact",
		"lastName":  "Newcomer",
		"email":     "pact.newcomer@example.com",
		"phone":     "+38640111222",
		"address":   "Pact street 1",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
