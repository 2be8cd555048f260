package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-commerce-api/internal/shared/geo"
)

func point(t *testing.T) geo.Point {
	t.Helper()
	p, err := geo.NewPoint(79.86, 6.92)
	require.NoError(t, err)
	return p
}

func purchase(t *testing.T) *Purchase {
	t.Helper()
	item, err := NewLineItem(ProductSnapshot{ID: "p1", ProductCode: "PRD-1", Title: "Lamp"}, "red", 2, decimal.NewFromInt(10))
	require.NoError(t, err)
	p, err := NewPurchase([]LineItem{item}, point(t), Address{Address: "1 Main", City: "Colombo", PostalCode: "00100"}, PurchasePending)
	require.NoError(t, err)
	return p
}

func TestOrder_KindFollowsPayload(t *testing.T) {
	inplace, err := NewInplace("repair", decimal.NewFromInt(20), "done", "e1")
	require.NoError(t, err)
	order, err := NewOrder("o1", "c1", inplace)
	require.NoError(t, err)
	require.Equal(t, KindInplace, order.Kind())
	require.Equal(t, "e1", order.HandledBy())

	_, ok := order.Purchase()
	require.False(t, ok)

	_, err = NewOrder("o2", " ", inplace)
	require.ErrorIs(t, err, ErrEmptyCustomer)
	_, err = NewOrder("o2", "c1", nil)
	require.ErrorIs(t, err, ErrEmptyPayload)
}

func TestInplace_Validation(t *testing.T) {
	_, err := NewInplace("", decimal.NewFromInt(1), "done", "e1")
	require.ErrorIs(t, err, ErrEmptyDescription)
	_, err = NewInplace("x", decimal.Zero, "done", "e1")
	require.ErrorIs(t, err, ErrInvalidPrice)
	_, err = NewInplace("x", decimal.NewFromInt(1), "", "e1")
	require.ErrorIs(t, err, ErrEmptyStatus)
	_, err = NewInplace("x", decimal.NewFromInt(1), "done", "")
	require.ErrorIs(t, err, ErrEmptyHandler)
}

func TestServiceRequest_Lifecycle(t *testing.T) {
	req, err := NewServiceRequest("broken screen", "0771234567", point(t))
	require.NoError(t, err)
	require.Equal(t, ServicePending, req.Status)
	require.False(t, req.IsUndertaken)

	require.ErrorIs(t, req.Reopen(), ErrNotUndertaken)
	require.ErrorIs(t, req.Complete(), ErrPriceNotSet)

	require.NoError(t, req.Accept("e1"))
	require.Equal(t, ServiceAccepted, req.Status)
	require.ErrorIs(t, req.Accept("e2"), ErrAlreadyUndertaken)
	require.Equal(t, "e1", req.HandledBy)

	require.ErrorIs(t, req.Quote(decimal.NewFromInt(-5)), ErrInvalidPrice)
	require.NoError(t, req.Quote(decimal.RequireFromString("35.555")))
	require.Equal(t, "35.56", req.Price.StringFixed(2))
	require.NoError(t, req.Complete())
	require.Equal(t, ServiceCompleted, req.Status)
	require.NoError(t, req.Reopen())
	require.Equal(t, ServiceAccepted, req.Status)
}

func TestServiceRequest_RejectsBadInput(t *testing.T) {
	_, err := NewServiceRequest(" ", "1", point(t))
	require.ErrorIs(t, err, ErrEmptyProblem)
	_, err = NewServiceRequest("x", "", point(t))
	require.ErrorIs(t, err, ErrEmptyContact)
	_, err = NewServiceRequest("x", "1", geo.Point{Long: 200})
	require.ErrorIs(t, err, geo.ErrLongitudeRange)
}

func TestPurchase_TotalsAndTolerance(t *testing.T) {
	p := purchase(t)
	require.Equal(t, "20", p.TotalPrice.String())
	require.Equal(t, "20", p.Items[0].TotalPrice.String())

	require.NoError(t, p.CheckTotal(decimal.RequireFromString("20.01")))
	require.ErrorIs(t, p.CheckTotal(decimal.RequireFromString("20.02")), ErrTotalMismatch)

	_, err := NewPurchase(nil, point(t), Address{}, PurchasePending)
	require.ErrorIs(t, err, ErrNoItems)
	_, err = NewLineItem(ProductSnapshot{ID: "p1"}, "red", 0, decimal.NewFromInt(1))
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = NewPurchase(p.Items, point(t), Address{Address: "1 Main"}, PurchasePending)
	require.ErrorIs(t, err, ErrIncompleteAddress)
}

func TestPurchase_StatusTransitions(t *testing.T) {
	p := purchase(t)
	p.InventoryReserved = true

	_, err := p.Transition("lost")
	require.ErrorIs(t, err, ErrInvalidStatus)
	_, err = p.Transition(PurchaseInventoryPending)
	require.ErrorIs(t, err, ErrInvalidStatus)

	release, err := p.Transition(PurchaseDispatched)
	require.NoError(t, err)
	require.False(t, release)

	release, err = p.Transition(PurchaseCancelled)
	require.NoError(t, err)
	require.True(t, release)

	_, err = p.Transition(PurchasePending)
	require.ErrorIs(t, err, ErrStatusLocked)
}

func TestPurchase_ConfirmAndAbandon(t *testing.T) {
	p := purchase(t)
	p.Status = PurchaseInventoryPending

	require.ErrorIs(t, p.Confirm(), ErrStatusLocked)
	p.InventoryReserved = true
	require.NoError(t, p.Confirm())
	require.Equal(t, PurchasePending, p.Status)

	require.True(t, p.Abandon())
	require.Equal(t, PurchaseCancelled, p.Status)
	require.False(t, p.Abandon())
}

func TestPurchase_PaidOnce(t *testing.T) {
	p := purchase(t)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	result := map[string]any{"id": "pay_1"}

	require.NoError(t, p.MarkPaid(at, result))
	result["id"] = "mutated"
	require.Equal(t, "pay_1", p.PaymentResult["id"])
	require.Equal(t, at, *p.PaidAt)
	require.ErrorIs(t, p.MarkPaid(at, nil), ErrAlreadyPaid)
}

func TestPurchase_NotPayableWhileReservingOrCancelled(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, status := range []PurchaseStatus{PurchaseInventoryPending, PurchaseCancelled} {
		p := purchase(t)
		p.Status = status
		require.ErrorIs(t, p.MarkPaid(at, nil), ErrStatusLocked, status)
		require.False(t, p.IsPaid)
		require.Nil(t, p.PaidAt)
	}
}

func TestPurchase_JSONRoundTrip(t *testing.T) {
	p := purchase(t)
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded Purchase
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.True(t, p.TotalPrice.Equal(decoded.TotalPrice))
	require.Equal(t, p.DeliveryLocation, decoded.DeliveryLocation)
	require.Equal(t, p.Items[0].Product, decoded.Items[0].Product)
}

func TestOrder_CloneIsDeep(t *testing.T) {
	order, err := NewOrder("o1", "c1", purchase(t))
	require.NoError(t, err)
	clone := order.Clone()
	p, _ := clone.Purchase()
	p.Items[0].Qty = 99
	original, _ := order.Purchase()
	require.Equal(t, 2, original.Items[0].Qty)
}
