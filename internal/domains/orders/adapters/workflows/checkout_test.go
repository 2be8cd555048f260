package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"

	orderapp "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application"
	ordertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-commerce-api/internal/platform/temporal/activities/orders"
)

type stubSteps struct {
	ports.CheckoutSteps
	placed []string
}

func (s *stubSteps) PlaceInTransaction(_ context.Context, draft ordertypes.PurchaseDraft) (*domain.Order, error) {
	s.placed = append(s.placed, draft.OrderID)
	return &domain.Order{ID: draft.OrderID, CustomerID: draft.CustomerID}, nil
}

func TestInlineCheckout_PlacesInTransaction(t *testing.T) {
	steps := &stubSteps{}
	runner := NewInlineCheckout(steps)

	order, err := runner.Checkout(context.Background(), ordertypes.PurchaseDraft{OrderID: "o1", CustomerID: "c1"})
	require.NoError(t, err)
	require.Equal(t, "o1", order.ID)
	require.Equal(t, []string{"o1"}, steps.placed)

	_, err = (*InlineCheckout)(nil).Checkout(context.Background(), ordertypes.PurchaseDraft{})
	require.Error(t, err)
}

func TestTranslateWorkflowError(t *testing.T) {
	short := temporal.NewNonRetryableApplicationError("short", orderactivities.ErrTypeInsufficientStock, nil)
	require.ErrorIs(t, translateWorkflowError(short), ports.ErrInsufficientStock)

	invalid := temporal.NewNonRetryableApplicationError("gone", orderactivities.ErrTypeInvalidPurchase, nil)
	require.ErrorIs(t, translateWorkflowError(invalid), ports.ErrProductUnavailable)
	require.ErrorIs(t, translateWorkflowError(invalid), orderapp.ErrInvalidInput)

	err := translateWorkflowError(errors.New("timeout"))
	require.ErrorIs(t, err, ErrCheckoutFailed)
}

func TestBuildCheckoutWorkflowID_StablePerOrder(t *testing.T) {
	require.Equal(t, buildCheckoutWorkflowID("o1"), buildCheckoutWorkflowID("o1"))
	require.NotEqual(t, buildCheckoutWorkflowID("o1"), buildCheckoutWorkflowID("o2"))
	require.Regexp(t, `^order-checkout-[0-9a-f]{16}$`, buildCheckoutWorkflowID("o1"))
}
