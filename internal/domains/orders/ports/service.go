package ports

import (
	"context"

	ordertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

// Service defines order use cases exposed to adapters. Every call carries the
// authenticated actor; the target is loaded before authorization so a missing
// order reports not found first.
type Service interface {
	CreateInplace(ctx context.Context, actor authz.Actor, input ordertypes.InplaceInput) (*domain.Order, error)
	GetInplace(ctx context.Context, actor authz.Actor, id string) (*domain.Order, error)
	UpdateInplace(ctx context.Context, actor authz.Actor, id string, input ordertypes.InplaceInput) (*domain.Order, error)
	DeleteInplace(ctx context.Context, actor authz.Actor, id string) (*domain.Order, error)
	ListInplaceByEmployee(ctx context.Context, actor authz.Actor, employeeID string) ([]*domain.Order, error)
	ListInplaceByCustomer(ctx context.Context, actor authz.Actor, customerID string) ([]*domain.Order, error)
	ListEmployeeSales(ctx context.Context, actor authz.Actor, employeeID string) ([]*domain.Order, error)

	CreateServiceRequest(ctx context.Context, actor authz.Actor, input ordertypes.ServiceRequestInput) (*domain.Order, error)
	GetServiceRequest(ctx context.Context, actor authz.Actor, id string) (*domain.Order, error)
	UpdateServiceRequest(ctx context.Context, actor authz.Actor, id string, input ordertypes.ServiceRequestInput) (*domain.Order, error)
	ListServiceRequestsByCustomer(ctx context.Context, actor authz.Actor, customerID string) ([]*domain.Order, error)
	ListAvailableServiceRequests(ctx context.Context, actor authz.Actor) ([]*domain.Order, error)
	AcceptServiceRequest(ctx context.Context, actor authz.Actor, id string) (*domain.Order, error)
	ProgressServiceRequest(ctx context.Context, actor authz.Actor, id string, input ordertypes.ProgressInput) (*domain.Order, error)

	PlacePurchase(ctx context.Context, actor authz.Actor, input ordertypes.PurchaseInput) (*domain.Order, error)
	ListPurchases(ctx context.Context, actor authz.Actor) ([]*domain.Order, error)
	ListOwnPurchases(ctx context.Context, actor authz.Actor) ([]*domain.Order, error)
	GetPurchase(ctx context.Context, actor authz.Actor, id string) (*domain.Order, error)
	PayPurchase(ctx context.Context, actor authz.Actor, id string, input ordertypes.PaymentInput) (*domain.Order, error)
	UpdatePurchaseStatus(ctx context.Context, actor authz.Actor, id string, status string) (*domain.Order, error)
}

// CheckoutSteps are the persistence steps of a purchase checkout. They run after the
// purchase is priced and authorized.
type CheckoutSteps interface {
	// PlaceInTransaction reserves stock and persists the order in one transaction.
	PlaceInTransaction(ctx context.Context, draft ordertypes.PurchaseDraft) (*domain.Order, error)
	// BeginPurchase persists the order as inventory-pending. Repeating it returns the stored order.
	BeginPurchase(ctx context.Context, draft ordertypes.PurchaseDraft) (*domain.Order, error)
	// ReservePurchase takes the stock for a begun purchase. Repeating it is a no-op.
	ReservePurchase(ctx context.Context, orderID string) error
	ConfirmPurchase(ctx context.Context, orderID string) (*domain.Order, error)
	// AbandonPurchase cancels the order and returns any stock it holds.
	AbandonPurchase(ctx context.Context, orderID string) (*domain.Order, error)
}

// CheckoutRunner executes the checkout of a priced purchase.
type CheckoutRunner interface {
	Checkout(ctx context.Context, draft ordertypes.PurchaseDraft) (*domain.Order, error)
}
