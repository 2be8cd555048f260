package api

import (
	"context"
	"log/slog"
	"os"

	"gorm.io/gorm"

	commerceserver "github.com/Apurer/go-gin-commerce-api/go"

	catalogmemory "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/ports"

	ordercatalog "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/adapters/catalog"
	ordermemory "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/adapters/memory"
	orderobs "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/adapters/persistence/postgres"
	orderapp "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"

	suppliermemory "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/adapters/memory"
	supplierobs "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/adapters/observability"
	supplierpostgres "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/adapters/persistence/postgres"
	supplierapp "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/application"
	supplierports "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/ports"

	usermemory "github.com/Apurer/go-gin-commerce-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/go-gin-commerce-api/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/go-gin-commerce-api/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/go-gin-commerce-api/internal/domains/users/application"
	userports "github.com/Apurer/go-gin-commerce-api/internal/domains/users/ports"

	"github.com/Apurer/go-gin-commerce-api/internal/platform/auth"
	"github.com/Apurer/go-gin-commerce-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-commerce-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-commerce-api/internal/platform/postgres"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

type supplierStore interface {
	supplierports.Repository
	catalogports.SupplierDirectory
}

type productStore interface {
	catalogports.Repository
	supplierports.ProductReferences
}

type orderStore interface {
	orderports.Repository
	userports.OrderReferences
}

// Storage is one backend for every repository. Memory and postgres are interchangeable.
type Storage struct {
	Users       userports.Repository
	Sessions    userports.SessionStore
	Suppliers   supplierStore
	Products    productStore
	Orders      orderStore
	Idempotency orderports.IdempotencyStore
	Tx          orderports.Transactor
}

// MemoryStorage keeps everything in process. Used when no database is configured and by tests.
func MemoryStorage() Storage {
	return Storage{
		Users:       usermemory.NewRepository(),
		Sessions:    usermemory.NewSessionStore(),
		Suppliers:   suppliermemory.NewRepository(),
		Products:    catalogmemory.NewRepository(),
		Orders:      ordermemory.NewRepository(),
		Idempotency: ordermemory.NewIdempotencyStore(),
		Tx:          ordermemory.NewTransactor(),
	}
}

// PostgresStorage shares db and one transactor across repositories so that a purchase
// and its stock changes commit together.
func PostgresStorage(db *gorm.DB, txMaxRetries int) Storage {
	opts := platformpostgres.DefaultTxOptions()
	opts.MaxRetries = txMaxRetries
	return Storage{
		Users:       userpostgres.NewRepository(db),
		Sessions:    userpostgres.NewSessionStore(db),
		Suppliers:   supplierpostgres.NewRepository(db),
		Products:    catalogpostgres.NewRepository(db),
		Orders:      orderpostgres.NewRepository(db),
		Idempotency: orderpostgres.NewIdempotencyStore(db),
		Tx:          platformpostgres.NewTransactor(db, opts),
	}
}

// Components are the decorated services plus what the HTTP layer and worker need.
type Components struct {
	Users     userports.Service
	Suppliers supplierports.Service
	Catalog   catalogports.Service
	Orders    orderports.Service
	// CheckoutSteps is the undecorated orders service, used by checkout workers.
	CheckoutSteps orderports.CheckoutSteps
	Gate          *authz.Gate
}

// BuildOptions tweaks Build.
type BuildOptions struct {
	Instruments *platformobservability.Instruments
	Checkout    orderports.CheckoutRunner
}

// Build wires services on top of storage. A nil Checkout places purchases in a local transaction.
func Build(storage Storage, tokens userports.TokenIssuer, opts BuildOptions) *Components {
	gate := authz.Default()
	logger := effectiveLogger(opts.Instruments)
	inst := opts.Instruments

	users := userobs.New(
		userapp.NewService(storage.Users, storage.Sessions, tokens, userapp.WithOrderReferences(storage.Orders), userapp.WithGate(gate)),
		userobs.WithLogger(logger),
		userobs.WithTracer(inst.Tracer("internal.users.application")),
		userobs.WithMeter(inst.Meter("internal.users.application")),
	)
	suppliers := supplierobs.New(
		supplierapp.NewService(storage.Suppliers, storage.Products),
		supplierobs.WithLogger(logger),
		supplierobs.WithTracer(inst.Tracer("internal.suppliers.application")),
		supplierobs.WithMeter(inst.Meter("internal.suppliers.application")),
	)
	catalog := buildCatalog(storage, inst)

	orderOpts := []orderapp.Option{orderapp.WithGate(gate)}
	if opts.Checkout != nil {
		orderOpts = append(orderOpts, orderapp.WithCheckout(opts.Checkout))
	}
	coreOrders := buildCoreOrders(storage, catalog, orderOpts...)
	orders := orderobs.New(
		coreOrders,
		orderobs.WithLogger(logger),
		orderobs.WithTracer(inst.Tracer("internal.orders.application")),
		orderobs.WithMeter(inst.Meter("internal.orders.application")),
	)

	return &Components{
		Users:         users,
		Suppliers:     suppliers,
		Catalog:       catalog,
		Orders:        orders,
		CheckoutSteps: coreOrders,
		Gate:          gate,
	}
}

// BuildCheckoutSteps wires only what checkout activities need.
func BuildCheckoutSteps(storage Storage, inst *platformobservability.Instruments) orderports.CheckoutSteps {
	return buildCoreOrders(storage, buildCatalog(storage, inst))
}

func buildCatalog(storage Storage, inst *platformobservability.Instruments) catalogports.Service {
	return catalogobs.New(
		catalogapp.NewService(storage.Products, storage.Suppliers),
		catalogobs.WithLogger(effectiveLogger(inst)),
		catalogobs.WithTracer(inst.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(inst.Meter("internal.catalog.application")),
	)
}

func buildCoreOrders(storage Storage, catalog catalogports.Service, opts ...orderapp.Option) *orderapp.Service {
	opts = append([]orderapp.Option{orderapp.WithIdempotencyStore(storage.Idempotency)}, opts...)
	return orderapp.NewService(storage.Orders, ordercatalog.NewBridge(catalog), storage.Tx, opts...)
}

// Handlers builds the HTTP handler sets.
func (c *Components) Handlers() commerceserver.ApiHandleFunctions {
	return commerceserver.ApiHandleFunctions{
		AuthAPI:     commerceserver.NewAuthAPI(c.Users),
		UserAPI:     commerceserver.NewUserAPI(c.Users),
		SupplierAPI: commerceserver.NewSupplierAPI(c.Suppliers),
		ProductAPI:  commerceserver.NewProductAPI(c.Catalog),
		OrderAPI:    commerceserver.NewOrderAPI(c.Orders),
	}
}

// Authenticator resolves bearer tokens through the users service.
func (c *Components) Authenticator() auth.Authenticator {
	return c.Users
}

// OpenStorage connects to postgres and migrates it, or falls back to memory when the DSN is
// empty or unreachable.
func OpenStorage(ctx context.Context, cfg StorageConfig, logger *slog.Logger) (Storage, func()) {
	db, cleanup := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger, platformpostgres.WithDebug(cfg.GormDebug))
	if db == nil {
		return MemoryStorage(), cleanup
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to migrate postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		cleanup()
		return MemoryStorage(), func() {}
	}
	logger.Info("repositories configured with postgres")
	return PostgresStorage(db, cfg.TxMaxRetries), cleanup
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
