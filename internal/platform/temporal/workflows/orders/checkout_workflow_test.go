package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-commerce-api/internal/platform/temporal/activities/orders"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/geo"
)

type fakeSteps struct {
	mu         sync.Mutex
	calls      []string
	reserveErr error
	order      *domain.Order
}

func (f *fakeSteps) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSteps) setStatus(status domain.PurchaseStatus) *domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	purchase, _ := f.order.Purchase()
	purchase.Status = status
	return f.order.Clone()
}

func (f *fakeSteps) PlaceInTransaction(context.Context, ordertypes.PurchaseDraft) (*domain.Order, error) {
	return nil, errors.New("not used by the workflow")
}

func (f *fakeSteps) BeginPurchase(_ context.Context, draft ordertypes.PurchaseDraft) (*domain.Order, error) {
	f.record("begin")
	order, err := draft.Order()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.order = order
	f.mu.Unlock()
	return f.setStatus(domain.PurchaseInventoryPending), nil
}

func (f *fakeSteps) ReservePurchase(context.Context, string) error {
	f.record("reserve")
	return f.reserveErr
}

func (f *fakeSteps) ConfirmPurchase(context.Context, string) (*domain.Order, error) {
	f.record("confirm")
	return f.setStatus(domain.PurchasePending), nil
}

func (f *fakeSteps) AbandonPurchase(context.Context, string) (*domain.Order, error) {
	f.record("abandon")
	return f.setStatus(domain.PurchaseCancelled), nil
}

func testDraft(t *testing.T) ordertypes.PurchaseDraft {
	t.Helper()
	item, err := domain.NewLineItem(domain.ProductSnapshot{ID: "p1", ProductCode: "PRD-1", Title: "Lamp"}, "white", 1, decimal.NewFromInt(15))
	require.NoError(t, err)
	location, err := geo.NewPoint(14.5, 46.05)
	require.NoError(t, err)
	purchase, err := domain.NewPurchase([]domain.LineItem{item}, location, domain.Address{Address: "Main 1", City: "Ljubljana", PostalCode: "1000"}, domain.PurchasePending)
	require.NoError(t, err)
	return ordertypes.PurchaseDraft{OrderID: "order-1", CustomerID: "cust-1", Purchase: *purchase}
}

func newEnv(t *testing.T, steps *fakeSteps) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := orderactivities.NewActivities(steps)
	env.RegisterWorkflowWithOptions(CheckoutWorkflow, workflow.RegisterOptions{Name: CheckoutWorkflowName})
	env.RegisterActivityWithOptions(acts.BeginPurchase, activity.RegisterOptions{Name: orderactivities.BeginPurchaseActivityName})
	env.RegisterActivityWithOptions(acts.ReservePurchase, activity.RegisterOptions{Name: orderactivities.ReservePurchaseActivityName})
	env.RegisterActivityWithOptions(acts.ConfirmPurchase, activity.RegisterOptions{Name: orderactivities.ConfirmPurchaseActivityName})
	env.RegisterActivityWithOptions(acts.AbandonPurchase, activity.RegisterOptions{Name: orderactivities.AbandonPurchaseActivityName})
	return env
}

func TestCheckoutWorkflow_ConfirmsReservedPurchase(t *testing.T) {
	steps := &fakeSteps{}
	env := newEnv(t, steps)

	env.ExecuteWorkflow(CheckoutWorkflowName, CheckoutWorkflowInput{Draft: testDraft(t), TraceID: "trace-1"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result orderactivities.CheckoutResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, "order-1", result.OrderID)
	require.Equal(t, string(domain.PurchasePending), result.Status)
	require.Equal(t, []string{"begin", "reserve", "confirm"}, steps.calls)
}

func TestCheckoutWorkflow_AbandonsWhenStockIsShort(t *testing.T) {
	steps := &fakeSteps{reserveErr: orderports.ErrInsufficientStock}
	env := newEnv(t, steps)

	env.ExecuteWorkflow(CheckoutWorkflowName, CheckoutWorkflowInput{Draft: testDraft(t)})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, orderactivities.ErrTypeInsufficientStock, appErr.Type())
	require.Equal(t, []string{"begin", "reserve", "abandon"}, steps.calls)
}
