package commerceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	orderhttpmapper "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/adapters/http/mapper"
	ordertypes "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application/types"
	orderdomain "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
)

// IdempotencyKeyHeader lets clients retry a purchase without placing it twice.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderAPI serves the three order types.
type OrderAPI struct {
	service orderports.Service
}

func NewOrderAPI(service orderports.Service) OrderAPI {
	return OrderAPI{service: service}
}

func respondOrder(c *gin.Context, status int, message string, order *orderdomain.Order) {
	c.JSON(status, gin.H{"message": message, "order": orderhttpmapper.FromDomainOrder(order)})
}

func respondOrders(c *gin.Context, orders []*orderdomain.Order) {
	c.JSON(http.StatusOK, gin.H{"message": "Success", "orders": orderhttpmapper.FromDomainOrders(orders)})
}

// Post /orders/inplace
func (api *OrderAPI) CreateInplace(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.InplaceRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.CreateInplace(c.Request.Context(), actor, orderhttpmapper.ToInplaceInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrder(c, http.StatusCreated, "Inplace order created", order)
}

// Get /orders/inplace/:id
func (api *OrderAPI) GetInplace(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	order, err := api.service.GetInplace(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrder(c, http.StatusOK, "Success", order)
}

// Put /orders/inplace/:id
func (api *OrderAPI) UpdateInplace(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.InplaceRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.UpdateInplace(c.Request.Context(), actor, c.Param("id"), orderhttpmapper.ToInplaceInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrder(c, http.StatusOK, "Inplace order updated successfully", order)
}

// Delete /orders/inplace/:id
func (api *OrderAPI) DeleteInplace(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	order, err := api.service.DeleteInplace(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrder(c, http.StatusOK, "Inplace order removed", order)
}

// Get /orders/inplace/employee/:id
func (api *OrderAPI) ListInplaceByEmployee(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orders, err := api.service.ListInplaceByEmployee(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrders(c, orders)
}

// Get /orders/inplace/customer/:id
func (api *OrderAPI) ListInplaceByCustomer(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orders, err := api.service.ListInplaceByCustomer(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrders(c, orders)
}

// Get /orders/employee/my/sales/:id
// In-store and service orders handled by the employee
func (api *OrderAPI) ListEmployeeSales(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orders, err := api.service.ListEmployeeSales(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrders(c, orders)
}

// Post /orders/online-service
func (api *OrderAPI) CreateServiceRequest(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.ServiceRequestBody
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.CreateServiceRequest(c.Request.Context(), actor, orderhttpmapper.ToServiceRequestInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrder(c, http.StatusCreated, "Service order created", order)
}

// Get /orders/online-service/:id
func (api *OrderAPI) GetServiceRequest(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	order, err := api.service.GetServiceRequest(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrder(c, http.StatusOK, "Success", order)
}

// Put /orders/online-service/:id
func (api *OrderAPI) UpdateServiceRequest(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.ServiceRequestBody
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.UpdateServiceRequest(c.Request.Context(), actor, c.Param("id"), orderhttpmapper.ToServiceRequestInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrder(c, http.StatusOK, "service order updated", order)
}

// Get /orders/online-service/customer/:id
func (api *OrderAPI) ListServiceRequestsByCustomer(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orders, err := api.service.ListServiceRequestsByCustomer(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrders(c, orders)
}

// Get /orders/online-service/employee/available
func (api *OrderAPI) ListAvailableServiceRequests(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orders, err := api.service.ListAvailableServiceRequests(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrders(c, orders)
}

// Put /orders/online-service/employee/accept
// The first employee to accept takes the job; later attempts get 409
func (api *OrderAPI) AcceptServiceRequest(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.AcceptRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.AcceptServiceRequest(c.Request.Context(), actor, payload.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrder(c, http.StatusOK, "service order updated", order)
}

var progressMessages = map[string]string{
	ordertypes.ProgressPrice:      "service order price updated",
	ordertypes.ProgressCompletion: "Order status updated to complete",
	ordertypes.ProgressAccepted:   "Order status updated to accepted",
}

// Put /orders/online-service/employee/update/:id?type=price|completion|accepted
func (api *OrderAPI) ProgressServiceRequest(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var progressType string
	if err := runtime.BindQueryParameter("form", true, true, "type", c.Request.URL.Query(), &progressType); err != nil {
		respondBindError(c, err)
		return
	}
	var payload orderhttpmapper.ProgressRequest
	if progressType == ordertypes.ProgressPrice {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondBindError(c, err)
			return
		}
	}
	order, err := api.service.ProgressServiceRequest(c.Request.Context(), actor, c.Param("id"), orderhttpmapper.ToProgressInput(progressType, payload))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrder(c, http.StatusOK, progressMessages[progressType], order)
}

// Get /orders/online-purchase
func (api *OrderAPI) ListPurchases(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orders, err := api.service.ListPurchases(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrders(c, orders)
}

// Post /orders/online-purchase
// Prices lines from the catalog and takes the stock atomically
func (api *OrderAPI) PlacePurchase(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.PurchaseRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input := orderhttpmapper.ToPurchaseInput(payload, c.GetHeader(IdempotencyKeyHeader))
	order, err := api.service.PlacePurchase(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrder(c, http.StatusCreated, "Purchase order created", order)
}

// Get /orders/online-purchase/customer
func (api *OrderAPI) ListOwnPurchases(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	orders, err := api.service.ListOwnPurchases(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrders(c, orders)
}

// Get /orders/online-purchase/:id
func (api *OrderAPI) GetPurchase(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	order, err := api.service.GetPurchase(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrder(c, http.StatusOK, "Success", order)
}

// Put /orders/online-purchase/:id/pay
func (api *OrderAPI) PayPurchase(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.PaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.PayPurchase(c.Request.Context(), actor, c.Param("id"), orderhttpmapper.ToPaymentInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrder(c, http.StatusOK, "Payment Success", order)
}

// Put /orders/online-purchase/:id/status
func (api *OrderAPI) UpdatePurchaseStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.StatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.UpdatePurchaseStatus(c.Request.Context(), actor, c.Param("id"), payload.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOrder(c, http.StatusOK, "Order status updated", order)
}
