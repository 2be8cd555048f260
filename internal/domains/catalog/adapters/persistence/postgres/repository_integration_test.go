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

	"github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-gin-commerce-api/internal/platform/postgres"
)

func setupCatalogPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

func newProduct(t *testing.T, id, code string, stock map[string]int) *domain.Product {
	t.Helper()
	product, err := domain.NewProduct(id, code, domain.Details{
		Title:          "Chair",
		Description:    "Oak chair",
		Price:          decimal.RequireFromString("49.90"),
		Condition:      "new",
		State:          domain.StateShowroom,
		ColorVariation: stock,
		SupplierID:     "s1",
	})
	require.NoError(t, err)
	product.Touch(time.Now().UTC())
	return product
}

func TestRepository_SaveGetListDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, newProduct(t, "p1", "PRD-00000001", map[string]int{"brown": 2}))
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("49.90").Equal(saved.Price))
	require.Equal(t, 2, saved.ColorVariation["brown"])

	_, err = repo.Save(ctx, newProduct(t, "p2", "PRD-00000001", map[string]int{"brown": 1}))
	require.ErrorIs(t, err, ports.ErrDuplicateProductCode)

	require.NoError(t, saved.SetImages([]string{"a", "b", "c", "d"}))
	require.NoError(t, saved.SwitchState("draft"))
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c", "d"}, updated.Images)

	showroom, err := repo.List(ctx, ports.ListFilter{State: domain.StateShowroom})
	require.NoError(t, err)
	require.Empty(t, showroom)

	referenced, err := repo.SupplierReferenced(ctx, "s1")
	require.NoError(t, err)
	require.True(t, referenced)

	require.NoError(t, repo.Delete(ctx, "p1"))
	require.ErrorIs(t, repo.Delete(ctx, "p1"), ports.ErrNotFound)
}

func TestRepository_ReserveIsAtomic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	_, err := repo.Save(ctx, newProduct(t, "p1", "PRD-00000001", map[string]int{"red": 1, "blue": 3}))
	require.NoError(t, err)

	err = repo.Reserve(ctx, []ports.Reservation{
		{ProductID: "p1", Color: "blue", Qty: 2},
		{ProductID: "p1", Color: "red", Qty: 2},
	})
	require.ErrorIs(t, err, ports.ErrInsufficientStock)
	stored, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 3, stored.ColorVariation["blue"])
	require.Zero(t, stored.SoldInfo["blue"])

	require.ErrorIs(t, repo.Reserve(ctx, []ports.Reservation{{ProductID: "nope", Color: "red", Qty: 1}}), ports.ErrNotFound)

	var wg sync.WaitGroup
	results := make(chan error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.Reserve(ctx, []ports.Reservation{{ProductID: "p1", Color: "blue", Qty: 1}})
		}()
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
	require.Equal(t, 3, succeeded)

	stored, err = repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 0, stored.ColorVariation["blue"])
	require.Equal(t, 3, stored.SoldInfo["blue"])

	require.NoError(t, repo.Release(ctx, []ports.Reservation{
		{ProductID: "deleted", Color: "blue", Qty: 1},
		{ProductID: "p1", Color: "blue", Qty: 1},
	}))
	stored, err = repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 1, stored.ColorVariation["blue"])
	require.Equal(t, 2, stored.SoldInfo["blue"])
}

func TestRepository_ReserveRollsBackWithOuterTransaction(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	_, err := repo.Save(ctx, newProduct(t, "p1", "PRD-00000001", map[string]int{"red": 2}))
	require.NoError(t, err)

	tx := platformpostgres.NewTransactor(db, platformpostgres.DefaultTxOptions())
	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := repo.Reserve(ctx, []ports.Reservation{{ProductID: "p1", Color: "red", Qty: 2}}); err != nil {
			return err
		}
		return ports.ErrInsufficientStock
	})
	require.ErrorIs(t, err, ports.ErrInsufficientStock)

	stored, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 2, stored.ColorVariation["red"])
}
