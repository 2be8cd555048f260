package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application/types"
	orderactivities "github.com/Apurer/go-gin-commerce-api/internal/platform/temporal/activities/orders"
)

// RunCheckoutSequence persists the purchase, reserves its stock and confirms it. When the
// reservation fails the purchase is abandoned, which also returns any stock it holds.
func RunCheckoutSequence(ctx workflow.Context, draft ordertypes.PurchaseDraft) (*orderactivities.CheckoutResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("checkout sequence started", "orderId", draft.OrderID)
	stepOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	compensateOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
		},
	}
	stepCtx := workflow.WithActivityOptions(ctx, stepOptions)

	var begun orderactivities.CheckoutResult
	if err := workflow.ExecuteActivity(stepCtx, orderactivities.BeginPurchaseActivityName, draft).Get(ctx, &begun); err != nil {
		logger.Error("checkout sequence could not store purchase", "orderId", draft.OrderID, "error", err)
		return nil, err
	}

	if err := workflow.ExecuteActivity(stepCtx, orderactivities.ReservePurchaseActivityName, begun.OrderID).Get(ctx, nil); err != nil {
		logger.Warn("checkout sequence reservation failed, abandoning", "orderId", begun.OrderID, "error", err)
		compensateCtx, _ := workflow.NewDisconnectedContext(ctx)
		compensateCtx = workflow.WithActivityOptions(compensateCtx, compensateOptions)
		if abandonErr := workflow.ExecuteActivity(compensateCtx, orderactivities.AbandonPurchaseActivityName, begun.OrderID).Get(compensateCtx, nil); abandonErr != nil {
			logger.Error("checkout sequence compensation failed", "orderId", begun.OrderID, "error", abandonErr)
		}
		return nil, err
	}

	var confirmed orderactivities.CheckoutResult
	if err := workflow.ExecuteActivity(stepCtx, orderactivities.ConfirmPurchaseActivityName, begun.OrderID).Get(ctx, &confirmed); err != nil {
		logger.Error("checkout sequence confirmation failed", "orderId", begun.OrderID, "error", err)
		return nil, err
	}
	logger.Info("checkout sequence completed", "orderId", confirmed.OrderID, "status", confirmed.Status)
	return &confirmed, nil
}
