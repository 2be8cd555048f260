package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	orderapp "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
)

const (
	// BeginPurchaseActivityName stores the purchase as inventory-pending.
	BeginPurchaseActivityName = "orders.activities.BeginPurchase"
	// ReservePurchaseActivityName takes the stock for every line.
	ReservePurchaseActivityName = "orders.activities.ReservePurchase"
	// ConfirmPurchaseActivityName moves the purchase to pending.
	ConfirmPurchaseActivityName = "orders.activities.ConfirmPurchase"
	// AbandonPurchaseActivityName cancels the purchase and returns held stock.
	AbandonPurchaseActivityName = "orders.activities.AbandonPurchase"
)

// Application error types that the checkout workflow surfaces to callers.
const (
	ErrTypeInsufficientStock = "InsufficientStock"
	ErrTypeInvalidPurchase   = "InvalidPurchase"
)

// CheckoutResult identifies the order a checkout step worked on.
type CheckoutResult struct {
	OrderID string
	Status  string
}

// Activities wraps the checkout steps of the orders service.
type Activities struct {
	steps orderports.CheckoutSteps
}

func NewActivities(steps orderports.CheckoutSteps) *Activities {
	return &Activities{steps: steps}
}

func (a *Activities) BeginPurchase(ctx context.Context, draft ordertypes.PurchaseDraft) (*CheckoutResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.steps == nil {
		logger.Error("checkout activities not initialized", "orderId", draft.OrderID)
		return nil, errors.New("checkout activities not initialized")
	}
	logger.Info("BeginPurchase activity started", "orderId", draft.OrderID)
	order, err := a.steps.BeginPurchase(ctx, draft)
	if err != nil {
		logger.Error("BeginPurchase activity failed", "orderId", draft.OrderID, "error", err)
		return nil, classify(err)
	}
	return result(order), nil
}

func (a *Activities) ReservePurchase(ctx context.Context, orderID string) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.steps == nil {
		return errors.New("checkout activities not initialized")
	}
	logger.Info("ReservePurchase activity started", "orderId", orderID)
	if err := a.steps.ReservePurchase(ctx, orderID); err != nil {
		logger.Error("ReservePurchase activity failed", "orderId", orderID, "error", err)
		return classify(err)
	}
	logger.Info("ReservePurchase activity completed", "orderId", orderID)
	return nil
}

func (a *Activities) ConfirmPurchase(ctx context.Context, orderID string) (*CheckoutResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.steps == nil {
		return nil, errors.New("checkout activities not initialized")
	}
	order, err := a.steps.ConfirmPurchase(ctx, orderID)
	if err != nil {
		logger.Error("ConfirmPurchase activity failed", "orderId", orderID, "error", err)
		return nil, classify(err)
	}
	logger.Info("ConfirmPurchase activity completed", "orderId", orderID)
	return result(order), nil
}

func (a *Activities) AbandonPurchase(ctx context.Context, orderID string) (*CheckoutResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.steps == nil {
		return nil, errors.New("checkout activities not initialized")
	}
	order, err := a.steps.AbandonPurchase(ctx, orderID)
	if err != nil {
		logger.Error("AbandonPurchase activity failed", "orderId", orderID, "error", err)
		return nil, err
	}
	logger.Info("AbandonPurchase activity completed", "orderId", orderID)
	return result(order), nil
}

// classify marks business failures as non-retryable so the workflow compensates at once.
func classify(err error) error {
	switch {
	case errors.Is(err, orderports.ErrInsufficientStock):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInsufficientStock, err)
	case errors.Is(err, orderapp.ErrInvalidInput),
		errors.Is(err, domain.ErrStatusLocked),
		errors.Is(err, orderports.ErrNotFound),
		errors.Is(err, orderports.ErrProductNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidPurchase, err)
	default:
		return err
	}
}

func result(order *domain.Order) *CheckoutResult {
	if order == nil {
		return &CheckoutResult{}
	}
	return &CheckoutResult{OrderID: order.ID, Status: order.Status()}
}
