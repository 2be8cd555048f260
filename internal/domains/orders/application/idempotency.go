package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	ordertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application/types"
)

type normalizedPurchaseInput struct {
	CustomerID string                   `json:"customerId"`
	Items      []normalizedPurchaseItem `json:"items"`
	Long       *float64                 `json:"long"`
	Lat        *float64                 `json:"lat"`
	Address    string                   `json:"address"`
	City       string                   `json:"city"`
	PostalCode string                   `json:"postalCode"`
	OrderTotal string                   `json:"orderTotal"`
}

type normalizedPurchaseItem struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Qty       int    `json:"qty"`
}

// FingerprintPurchase builds a deterministic hash of a purchase request for one customer
// (excluding the idempotency key). Item order does not change the hash.
func FingerprintPurchase(customerID string, input ordertypes.PurchaseInput) (string, error) {
	payload, err := json.Marshal(normalizePurchaseInput(customerID, input))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func normalizePurchaseInput(customerID string, input ordertypes.PurchaseInput) normalizedPurchaseInput {
	items := make([]normalizedPurchaseItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, normalizedPurchaseItem{
			ProductID: strings.TrimSpace(item.ProductID),
			Color:     strings.TrimSpace(item.Color),
			Qty:       item.Qty,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].ProductID != items[j].ProductID {
			return items[i].ProductID < items[j].ProductID
		}
		if items[i].Color != items[j].Color {
			return items[i].Color < items[j].Color
		}
		return items[i].Qty < items[j].Qty
	})
	return normalizedPurchaseInput{
		CustomerID: customerID,
		Items:      items,
		Long:       input.DeliveryLocation.Long,
		Lat:        input.DeliveryLocation.Lat,
		Address:    strings.TrimSpace(input.DeliveryAddress.Address),
		City:       strings.TrimSpace(input.DeliveryAddress.City),
		PostalCode: strings.TrimSpace(input.DeliveryAddress.PostalCode),
		OrderTotal: input.OrderTotal.StringFixed(2),
	}
}
