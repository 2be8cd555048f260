package orders

import (
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application/types"
	orderactivities "github.com/Apurer/go-gin-commerce-api/internal/platform/temporal/activities/orders"
	"github.com/Apurer/go-gin-commerce-api/internal/platform/temporal/sequences"
)

const (
	// CheckoutWorkflowName is the public identifier for registering the workflow.
	CheckoutWorkflowName = "orders.workflows.Checkout"
	// CheckoutTaskQueue is the queue consumed by the worker processing checkouts.
	CheckoutTaskQueue = "ORDER_CHECKOUT"
)

// CheckoutWorkflowInput carries a priced purchase into the durable checkout.
type CheckoutWorkflowInput struct {
	Draft   ordertypes.PurchaseDraft
	TraceID string
}

// CheckoutWorkflow reserves stock for a purchase and compensates when it cannot.
func CheckoutWorkflow(ctx workflow.Context, input CheckoutWorkflowInput) (*orderactivities.CheckoutResult, error) {
	logger := workflow.GetLogger(ctx)
	orderID := input.Draft.OrderID
	logger.Info("CheckoutWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)
	result, err := sequences.RunCheckoutSequence(ctx, input.Draft)
	if err != nil {
		logger.Error("CheckoutWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return nil, err
	}
	logger.Info("CheckoutWorkflow completed", withTraceID(input.TraceID, "orderId", result.OrderID)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
