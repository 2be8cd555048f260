//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	catalogpostgres "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/domain"
	ordercatalog "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/adapters/catalog"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-gin-commerce-api/internal/platform/postgres"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/geo"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("commerce_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func newServiceOrder(t *testing.T, id string) *domain.Order {
	t.Helper()
	location, err := geo.NewPoint(14.5, 46.05)
	require.NoError(t, err)
	payload, err := domain.NewServiceRequest("Leaking tap", "040 000 000", location)
	require.NoError(t, err)
	order, err := domain.NewOrder(id, "cust-1", payload)
	require.NoError(t, err)
	order.Touch(time.Now().UTC())
	return order
}

func TestRepository_VersionedUpdatesAndAccept(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newServiceOrder(t, "o1"))
	require.NoError(t, err)
	require.EqualValues(t, 1, created.Version)
	_, err = repo.Create(ctx, newServiceOrder(t, "o1"))
	require.ErrorIs(t, err, ports.ErrDuplicateOrder)

	loaded, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	request, ok := loaded.ServiceRequest()
	require.True(t, ok)
	require.Equal(t, "Leaking tap", request.Problem)
	require.InDelta(t, 46.05, request.Location.Lat, 1e-9)

	available, err := repo.List(ctx, ports.ListFilter{Kinds: []domain.Kind{domain.KindOnlineService}, Available: true})
	require.NoError(t, err)
	require.Len(t, available, 1)

	accepted, err := repo.Accept(ctx, "o1", "emp-1", time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, "emp-1", accepted.HandledBy())
	_, err = repo.Accept(ctx, "o1", "emp-2", time.Now().UTC())
	require.ErrorIs(t, err, ports.ErrAlreadyUndertaken)

	_, err = repo.Update(ctx, loaded)
	require.ErrorIs(t, err, ports.ErrStaleOrder)

	request, _ = accepted.ServiceRequest()
	require.NoError(t, request.Quote(decimal.NewFromInt(40)))
	updated, err := repo.Update(ctx, accepted)
	require.NoError(t, err)
	require.Equal(t, accepted.Version+1, updated.Version)

	handles, err := repo.EmployeeHandlesOrders(ctx, "emp-1")
	require.NoError(t, err)
	require.True(t, handles)
	has, err := repo.CustomerHasOrders(ctx, "cust-2")
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, repo.Delete(ctx, "o1"))
	_, err = repo.GetByID(ctx, "o1")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCheckout_LastUnitGoesToOneBuyer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	ctx := context.Background()

	products := catalogpostgres.NewRepository(db)
	product, err := catalogdomain.NewProduct("p1", "PRD-00000001", catalogdomain.Details{
		Title:          "Lamp",
		Description:    "Desk lamp",
		Price:          decimal.RequireFromString("15.00"),
		Condition:      "new",
		State:          catalogdomain.StateShowroom,
		ColorVariation: map[string]int{"white": 1},
		SupplierID:     "s1",
	})
	require.NoError(t, err)
	product.Touch(time.Now().UTC())
	_, err = products.Save(ctx, product)
	require.NoError(t, err)

	repo := NewRepository(db)
	svc := application.NewService(
		repo,
		ordercatalog.NewBridge(catalogapp.NewService(products, nil)),
		platformpostgres.NewTransactor(db, platformpostgres.DefaultTxOptions()),
		application.WithIdempotencyStore(NewIdempotencyStore(db)),
	)

	long, lat := 14.5, 46.05
	input := ordertypes.PurchaseInput{
		Items:            []ordertypes.PurchaseItemInput{{ProductID: "p1", Color: "white", Qty: 1}},
		DeliveryLocation: ordertypes.Location{Long: &long, Lat: &lat},
		DeliveryAddress:  ordertypes.AddressInput{Address: "Main 1", City: "Ljubljana", PostalCode: "1000"},
		OrderTotal:       decimal.RequireFromString("15"),
	}

	var wg sync.WaitGroup
	results := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(buyer string) {
			defer wg.Done()
			actor := authz.Actor{ID: buyer, Roles: []authz.Role{authz.RoleCustomer}}
			_, err := svc.PlacePurchase(ctx, actor, input)
			results <- err
		}("cust-" + string(rune('a'+i)))
	}
	wg.Wait()
	close(results)
	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, ports.ErrInsufficientStock)
	}
	require.Equal(t, 1, succeeded)

	orders, err := repo.List(ctx, ports.ListFilter{Kinds: []domain.Kind{domain.KindOnlinePurchase}})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	stored, err := products.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 0, stored.ColorVariation["white"])
	require.Equal(t, 1, stored.SoldInfo["white"])

	staff := authz.Actor{ID: "emp-1", Roles: []authz.Role{authz.RoleEmployee}}
	_, err = svc.UpdatePurchaseStatus(ctx, staff, orders[0].ID, "cancelled")
	require.NoError(t, err)
	stored, err = products.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 1, stored.ColorVariation["white"])

	buyer := authz.Actor{ID: orders[0].CustomerID, Roles: []authz.Role{authz.RoleCustomer}}
	_, err = svc.PayPurchase(ctx, buyer, orders[0].ID, ordertypes.PaymentInput{})
	require.ErrorIs(t, err, domain.ErrStatusLocked)
}

func TestIdempotencyStore_ConflictOnDifferentBinding(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	store := NewIdempotencyStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h1", OrderID: "o1", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	require.Equal(t, "o1", saved.OrderID)

	again, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h1", OrderID: "o1", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	require.Equal(t, "o1", again.OrderID)

	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h2", OrderID: "o2", CreatedAt: now, UpdatedAt: now})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.Equal(t, "o1", existing.OrderID)

	missing, err := store.Get(ctx, "k2")
	require.NoError(t, err)
	require.Nil(t, missing)
}
