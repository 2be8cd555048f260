package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	orderapp "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-commerce-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-commerce-api/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.CheckoutRunner = (*TemporalCheckout)(nil)
	_ ports.CheckoutRunner = (*InlineCheckout)(nil)
)

// ErrCheckoutFailed wraps durable checkout failures that carry no business meaning.
var ErrCheckoutFailed = errors.New("checkout failed")

// TemporalCheckout runs checkouts as workflows on a Temporal cluster.
type TemporalCheckout struct {
	client    client.Client
	repo      ports.Repository
	taskQueue string
}

// NewTemporalCheckout wires a Temporal client. repo loads the order a workflow produced.
func NewTemporalCheckout(c client.Client, repo ports.Repository) *TemporalCheckout {
	return &TemporalCheckout{client: c, repo: repo, taskQueue: orderworkflows.CheckoutTaskQueue}
}

// Checkout starts the workflow keyed by order ID and waits for it. A retried request reattaches
// to the running or finished workflow.
func (o *TemporalCheckout) Checkout(ctx context.Context, draft ordertypes.PurchaseDraft) (*domain.Order, error) {
	if o == nil || o.client == nil || o.repo == nil {
		return nil, errors.New("temporal checkout not configured")
	}
	workflowID := buildCheckoutWorkflowID(draft.OrderID)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	input := orderworkflows.CheckoutWorkflowInput{Draft: draft, TraceID: workflowTraceID(ctx)}
	run, err := o.client.ExecuteWorkflow(ctx, options, orderworkflows.CheckoutWorkflowName, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result orderactivities.CheckoutResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, translateWorkflowError(err)
	}
	return o.repo.GetByID(ctx, result.OrderID)
}

// InlineCheckout reserves and stores the purchase in one local transaction.
type InlineCheckout struct {
	steps ports.CheckoutSteps
}

func NewInlineCheckout(steps ports.CheckoutSteps) *InlineCheckout {
	return &InlineCheckout{steps: steps}
}

func (o *InlineCheckout) Checkout(ctx context.Context, draft ordertypes.PurchaseDraft) (*domain.Order, error) {
	if o == nil || o.steps == nil {
		return nil, errors.New("inline checkout not configured")
	}
	return o.steps.PlaceInTransaction(ctx, draft)
}

func translateWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		switch appErr.Type() {
		case orderactivities.ErrTypeInsufficientStock:
			return ports.ErrInsufficientStock
		case orderactivities.ErrTypeInvalidPurchase:
			return fmt.Errorf("%w: %w: %s", orderapp.ErrInvalidInput, ports.ErrProductUnavailable, appErr.Message())
		}
	}
	return fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
}

func buildCheckoutWorkflowID(orderID string) string {
	sum := sha256.Sum256([]byte(orderID))
	// First 16 hex chars keep workflow IDs short and stable per order.
	return fmt.Sprintf("order-checkout-%s", hex.EncodeToString(sum[:8]))
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if spanCtx.IsValid() && spanCtx.TraceID().IsValid() {
		return spanCtx.TraceID().String()
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}
