package application

import (
	"context"
	"errors"
	"strings"
	"time"

	ordertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/geo"
)

// PlacePurchase prices the items from the catalog and checks out. With an idempotency key a
// repeated request returns the order the first one produced.
func (s *Service) PlacePurchase(ctx context.Context, actor authz.Actor, input ordertypes.PurchaseInput) (*domain.Order, error) {
	if actor.ID == "" {
		return nil, authz.ErrUnauthorized
	}
	orderID := s.newID()
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" && s.idem != nil {
		claimed, existing, err := s.claimIdempotencyKey(ctx, key, actor.ID, input, orderID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
		orderID = claimed
	}
	draft, err := s.pricePurchase(ctx, orderID, actor.ID, input)
	if err != nil {
		return nil, err
	}
	if s.checkout != nil {
		return s.checkout.Checkout(ctx, draft)
	}
	return s.PlaceInTransaction(ctx, draft)
}

// claimIdempotencyKey binds key to orderID. When the key was already bound by the same request it
// returns the earlier order ID, together with the order when it has been persisted.
func (s *Service) claimIdempotencyKey(ctx context.Context, key, customerID string, input ordertypes.PurchaseInput, orderID string) (string, *domain.Order, error) {
	hash, err := FingerprintPurchase(customerID, input)
	if err != nil {
		return "", nil, err
	}
	record, err := s.idem.Get(ctx, key)
	if err != nil {
		return "", nil, err
	}
	if record == nil {
		now := s.now()
		record, err = s.idem.Save(ctx, ports.IdempotencyRecord{
			Key:         key,
			RequestHash: hash,
			OrderID:     orderID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil && !errors.Is(err, ports.ErrIdempotencyConflict) {
			return "", nil, err
		}
		if record == nil {
			return "", nil, err
		}
	}
	if record.RequestHash != hash {
		return "", nil, ports.ErrIdempotencyConflict
	}
	existing, err := s.repo.GetByID(ctx, record.OrderID)
	switch {
	case err == nil:
		return record.OrderID, existing, nil
	case errors.Is(err, ports.ErrNotFound):
		return record.OrderID, nil, nil
	default:
		return "", nil, err
	}
}

func (s *Service) pricePurchase(ctx context.Context, orderID, customerID string, input ordertypes.PurchaseInput) (ordertypes.PurchaseDraft, error) {
	if len(input.Items) == 0 {
		return ordertypes.PurchaseDraft{}, mapError(domain.ErrNoItems)
	}
	location, err := geo.FromLongLat(input.DeliveryLocation.Long, input.DeliveryLocation.Lat)
	if err != nil {
		return ordertypes.PurchaseDraft{}, mapError(err)
	}
	items := make([]domain.LineItem, 0, len(input.Items))
	for _, line := range input.Items {
		productID := strings.TrimSpace(line.ProductID)
		if productID == "" {
			return ordertypes.PurchaseDraft{}, mapError(domain.ErrEmptyProduct)
		}
		if line.Qty <= 0 {
			return ordertypes.PurchaseDraft{}, mapError(domain.ErrInvalidQuantity)
		}
		product, err := s.catalog.Product(ctx, productID)
		if err != nil {
			return ordertypes.PurchaseDraft{}, mapError(err)
		}
		if !product.Showroom {
			return ordertypes.PurchaseDraft{}, mapError(ports.ErrProductUnavailable)
		}
		snapshot := domain.ProductSnapshot{
			ID:          product.ID,
			ProductCode: product.ProductCode,
			Title:       product.Title,
			Condition:   product.Condition,
			Image:       product.Image,
		}
		item, err := domain.NewLineItem(snapshot, line.Color, line.Qty, product.Price)
		if err != nil {
			return ordertypes.PurchaseDraft{}, mapError(err)
		}
		items = append(items, item)
	}
	address := domain.Address{
		Address:    input.DeliveryAddress.Address,
		City:       input.DeliveryAddress.City,
		PostalCode: input.DeliveryAddress.PostalCode,
	}
	purchase, err := domain.NewPurchase(items, location, address, domain.PurchasePending)
	if err != nil {
		return ordertypes.PurchaseDraft{}, mapError(err)
	}
	if err := purchase.CheckTotal(input.OrderTotal); err != nil {
		return ordertypes.PurchaseDraft{}, mapError(err)
	}
	draft := ordertypes.PurchaseDraft{OrderID: orderID, CustomerID: customerID, Purchase: *purchase}
	if _, err := draft.Order(); err != nil {
		return ordertypes.PurchaseDraft{}, mapError(err)
	}
	return draft, nil
}

// PlaceInTransaction reserves every line and stores the order in one transaction.
func (s *Service) PlaceInTransaction(ctx context.Context, draft ordertypes.PurchaseDraft) (*domain.Order, error) {
	order, err := draft.Order()
	if err != nil {
		return nil, mapError(err)
	}
	purchase, _ := order.Purchase()
	purchase.Status = domain.PurchasePending
	purchase.InventoryReserved = true
	order.Touch(s.now())

	var placed *domain.Order
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, order.ID)
		if err == nil {
			placed = existing
			return nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return err
		}
		if err := s.catalog.Reserve(ctx, reservations(purchase)); err != nil {
			return err
		}
		placed, err = s.repo.Create(ctx, order)
		return err
	})
	if errors.Is(err, ports.ErrDuplicateOrder) {
		return s.repo.GetByID(ctx, order.ID)
	}
	if err != nil {
		return nil, mapError(err)
	}
	return placed, nil
}

// BeginPurchase stores the order as inventory-pending.
func (s *Service) BeginPurchase(ctx context.Context, draft ordertypes.PurchaseDraft) (*domain.Order, error) {
	order, err := draft.Order()
	if err != nil {
		return nil, mapError(err)
	}
	purchase, _ := order.Purchase()
	purchase.Status = domain.PurchaseInventoryPending
	purchase.InventoryReserved = false
	order.Touch(s.now())
	created, err := s.repo.Create(ctx, order)
	if errors.Is(err, ports.ErrDuplicateOrder) {
		return s.repo.GetByID(ctx, order.ID)
	}
	return created, err
}

func (s *Service) ReservePurchase(ctx context.Context, orderID string) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, purchase, err := s.loadPurchase(ctx, orderID)
		if err != nil {
			return err
		}
		if purchase.InventoryReserved || purchase.Status != domain.PurchaseInventoryPending {
			return nil
		}
		if err := s.catalog.Reserve(ctx, reservations(purchase)); err != nil {
			return err
		}
		purchase.InventoryReserved = true
		order.Touch(s.now())
		_, err = s.repo.Update(ctx, order)
		return err
	})
}

func (s *Service) ConfirmPurchase(ctx context.Context, orderID string) (*domain.Order, error) {
	order, purchase, err := s.loadPurchase(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if purchase.Status != domain.PurchaseInventoryPending {
		return order, nil
	}
	if err := purchase.Confirm(); err != nil {
		return nil, err
	}
	order.Touch(s.now())
	return s.repo.Update(ctx, order)
}

func (s *Service) AbandonPurchase(ctx context.Context, orderID string) (*domain.Order, error) {
	var abandoned *domain.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, purchase, err := s.loadPurchase(ctx, orderID)
		if err != nil {
			return err
		}
		if purchase.Status == domain.PurchaseCancelled {
			abandoned = order
			return nil
		}
		held := reservations(purchase)
		if purchase.Abandon() {
			if err := s.catalog.Release(ctx, held); err != nil {
				return err
			}
		}
		order.Touch(s.now())
		abandoned, err = s.repo.Update(ctx, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return abandoned, nil
}

// ListPurchases returns every online purchase.
func (s *Service) ListPurchases(ctx context.Context, actor authz.Actor) ([]*domain.Order, error) {
	if err := s.gate.Permit(actor, authz.RequireRole(authz.RoleEmployee)); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, ports.ListFilter{Kinds: []domain.Kind{domain.KindOnlinePurchase}})
}

// ListOwnPurchases returns the caller's online purchases.
func (s *Service) ListOwnPurchases(ctx context.Context, actor authz.Actor) ([]*domain.Order, error) {
	if actor.ID == "" {
		return nil, authz.ErrUnauthorized
	}
	return s.repo.List(ctx, ports.ListFilter{Kinds: []domain.Kind{domain.KindOnlinePurchase}, CustomerID: actor.ID})
}

// GetPurchase is open to the buyer and to employees.
func (s *Service) GetPurchase(ctx context.Context, actor authz.Actor, id string) (*domain.Order, error) {
	order, err := s.load(ctx, id, domain.KindOnlinePurchase)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Permit(actor, ownerOrEmployee(order.CustomerID)); err != nil {
		return nil, err
	}
	return order, nil
}

// PayPurchase records the payment result. An order is paid once.
func (s *Service) PayPurchase(ctx context.Context, actor authz.Actor, id string, input ordertypes.PaymentInput) (*domain.Order, error) {
	order, err := s.GetPurchase(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	purchase, _ := order.Purchase()
	paidAt := s.now().UTC().Truncate(time.Microsecond)
	if err := purchase.MarkPaid(paidAt, input.Result); err != nil {
		return nil, err
	}
	return s.repo.MarkPaid(ctx, order.ID, paidAt, input.Result)
}

// UpdatePurchaseStatus moves a purchase along its fulfilment. Cancelling returns the reserved stock.
func (s *Service) UpdatePurchaseStatus(ctx context.Context, actor authz.Actor, id string, status string) (*domain.Order, error) {
	order, err := s.load(ctx, id, domain.KindOnlinePurchase)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Permit(actor, authz.RequireRole(authz.RoleEmployee)); err != nil {
		return nil, err
	}
	next, err := domain.ParsePurchaseStatus(status)
	if err != nil {
		return nil, mapError(err)
	}

	var updated *domain.Order
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		purchase, _ := order.Purchase()
		held := reservations(purchase)
		release, err := purchase.Transition(next)
		if err != nil {
			return err
		}
		if release {
			if err := s.catalog.Release(ctx, held); err != nil {
				return err
			}
			purchase.InventoryReserved = false
		}
		order.Touch(s.now())
		updated, err = s.repo.Update(ctx, order)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

func (s *Service) loadPurchase(ctx context.Context, id string) (*domain.Order, *domain.Purchase, error) {
	order, err := s.load(ctx, id, domain.KindOnlinePurchase)
	if err != nil {
		return nil, nil, err
	}
	purchase, _ := order.Purchase()
	return order, purchase, nil
}

func ownerOrEmployee(customerID string) authz.Requirement {
	return authz.Requirement{Role: authz.RoleEmployee, OwnerID: customerID}
}

func reservations(p *domain.Purchase) []ports.Reservation {
	lines := make([]ports.Reservation, 0, len(p.Items))
	for _, item := range p.Items {
		lines = append(lines, ports.Reservation{ProductID: item.Product.ID, Color: item.Color, Qty: item.Qty})
	}
	return lines
}

var _ ports.CheckoutSteps = (*Service)(nil)
