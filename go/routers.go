// Package commerceserver is the HTTP surface of the commerce API.
package commerceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-commerce-api/internal/platform/auth"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

func init() {
	// Prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Route is one endpoint. Public routes skip authentication; a non-empty Role gates the
// route on that role, which admins always satisfy.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
	Public      bool
	Role        authz.Role
}

// ApiHandleFunctions groups the handler sets served by the router.
type ApiHandleFunctions struct {
	AuthAPI     AuthAPI
	UserAPI     UserAPI
	SupplierAPI SupplierAPI
	ProductAPI  ProductAPI
	OrderAPI    OrderAPI
}

// NewRouter returns a gin engine serving every route.
func NewRouter(handleFunctions ApiHandleFunctions, authenticator auth.Authenticator, gate *authz.Gate) *gin.Engine {
	return NewRouterWithGinEngine(gin.New(), handleFunctions, authenticator, gate)
}

// NewRouterWithGinEngine registers routes on an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, authenticator auth.Authenticator, gate *authz.Gate) *gin.Engine {
	if gate == nil {
		gate = authz.Default()
	}
	router.Use(gin.Recovery())
	authenticated := auth.Middleware(authenticator)
	for _, route := range getRoutes(handleFunctions) {
		chain := make([]gin.HandlerFunc, 0, 3)
		if !route.Public {
			chain = append(chain, authenticated)
			if route.Role != "" {
				chain = append(chain, auth.RequireRole(gate, route.Role))
			}
		}
		chain = append(chain, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, chain...)
	}
	return router
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func getRoutes(h ApiHandleFunctions) []Route {
	const (
		admin    = authz.RoleAdmin
		employee = authz.RoleEmployee
	)
	return []Route{
		{Name: "Healthz", Method: http.MethodGet, Pattern: "/healthz", HandlerFunc: Healthz, Public: true},

		{Name: "Login", Method: http.MethodPost, Pattern: "/auth/login", HandlerFunc: h.AuthAPI.Login, Public: true},
		{Name: "Register", Method: http.MethodPost, Pattern: "/auth/register", HandlerFunc: h.AuthAPI.Register, Public: true},
		{Name: "Logout", Method: http.MethodPost, Pattern: "/auth/logout", HandlerFunc: h.AuthAPI.Logout},
		{Name: "GetProfile", Method: http.MethodGet, Pattern: "/profile", HandlerFunc: h.AuthAPI.GetProfile},
		{Name: "UpdateProfile", Method: http.MethodPut, Pattern: "/profile", HandlerFunc: h.AuthAPI.UpdateProfile},

		{Name: "ListUsers", Method: http.MethodGet, Pattern: "/users", HandlerFunc: h.UserAPI.ListUsers, Role: admin},
		{Name: "ListEmployees", Method: http.MethodGet, Pattern: "/users/employee", HandlerFunc: h.UserAPI.ListEmployees, Role: admin},
		{Name: "CreateEmployee", Method: http.MethodPost, Pattern: "/users/employee", HandlerFunc: h.UserAPI.CreateEmployee, Role: admin},
		{Name: "GetEmployee", Method: http.MethodGet, Pattern: "/users/employee/:id", HandlerFunc: h.UserAPI.GetEmployee, Role: employee},
		{Name: "UpdateEmployee", Method: http.MethodPut, Pattern: "/users/employee/:id", HandlerFunc: h.UserAPI.UpdateEmployee, Role: admin},
		{Name: "DeleteEmployee", Method: http.MethodDelete, Pattern: "/users/employee/:id", HandlerFunc: h.UserAPI.DeleteEmployee, Role: admin},
		{Name: "ListCustomers", Method: http.MethodGet, Pattern: "/users/manage/customer", HandlerFunc: h.UserAPI.ListCustomers, Role: employee},
		{Name: "CreateCustomer", Method: http.MethodPost, Pattern: "/users/manage/customer", HandlerFunc: h.UserAPI.CreateCustomer, Role: employee},
		{Name: "GetCustomer", Method: http.MethodGet, Pattern: "/users/manage/customer/:id", HandlerFunc: h.UserAPI.GetCustomer, Role: employee},
		{Name: "UpdateCustomer", Method: http.MethodPut, Pattern: "/users/manage/customer/:id", HandlerFunc: h.UserAPI.UpdateCustomer, Role: employee},
		{Name: "DeleteCustomer", Method: http.MethodDelete, Pattern: "/users/manage/customer/:id", HandlerFunc: h.UserAPI.DeleteCustomer, Role: employee},

		{Name: "CreateSupplier", Method: http.MethodPost, Pattern: "/suppliers", HandlerFunc: h.SupplierAPI.CreateSupplier, Role: admin},
		{Name: "ListSuppliers", Method: http.MethodGet, Pattern: "/suppliers", HandlerFunc: h.SupplierAPI.ListSuppliers, Role: admin},
		{Name: "GetSupplier", Method: http.MethodGet, Pattern: "/suppliers/:id", HandlerFunc: h.SupplierAPI.GetSupplier, Role: admin},
		{Name: "UpdateSupplier", Method: http.MethodPut, Pattern: "/suppliers/:id", HandlerFunc: h.SupplierAPI.UpdateSupplier, Role: admin},
		{Name: "DeleteSupplier", Method: http.MethodDelete, Pattern: "/suppliers/:id", HandlerFunc: h.SupplierAPI.DeleteSupplier, Role: admin},

		{Name: "ListProducts", Method: http.MethodGet, Pattern: "/products", HandlerFunc: h.ProductAPI.ListProducts, Role: admin},
		{Name: "CreateProduct", Method: http.MethodPost, Pattern: "/products", HandlerFunc: h.ProductAPI.CreateProduct, Role: employee},
		{Name: "ListShowroom", Method: http.MethodGet, Pattern: "/products/showroom", HandlerFunc: h.ProductAPI.ListShowroom},
		{Name: "CheckCart", Method: http.MethodGet, Pattern: "/products/cart-items", HandlerFunc: h.ProductAPI.CheckCart},
		{Name: "GetProduct", Method: http.MethodGet, Pattern: "/products/:id", HandlerFunc: h.ProductAPI.GetProduct},
		{Name: "UpdateProduct", Method: http.MethodPut, Pattern: "/products/:id", HandlerFunc: h.ProductAPI.UpdateProduct, Role: employee},
		{Name: "DeleteProduct", Method: http.MethodDelete, Pattern: "/products/:id", HandlerFunc: h.ProductAPI.DeleteProduct, Role: admin},
		{Name: "UpdateImages", Method: http.MethodPut, Pattern: "/products/:id/images", HandlerFunc: h.ProductAPI.UpdateImages, Role: employee},
		{Name: "SwitchState", Method: http.MethodPut, Pattern: "/products/:id/switch/state", HandlerFunc: h.ProductAPI.SwitchState, Role: admin},

		{Name: "CreateInplace", Method: http.MethodPost, Pattern: "/orders/inplace", HandlerFunc: h.OrderAPI.CreateInplace, Role: employee},
		{Name: "ListInplaceByEmployee", Method: http.MethodGet, Pattern: "/orders/inplace/employee/:id", HandlerFunc: h.OrderAPI.ListInplaceByEmployee, Role: employee},
		{Name: "ListInplaceByCustomer", Method: http.MethodGet, Pattern: "/orders/inplace/customer/:id", HandlerFunc: h.OrderAPI.ListInplaceByCustomer},
		{Name: "GetInplace", Method: http.MethodGet, Pattern: "/orders/inplace/:id", HandlerFunc: h.OrderAPI.GetInplace, Role: employee},
		{Name: "UpdateInplace", Method: http.MethodPut, Pattern: "/orders/inplace/:id", HandlerFunc: h.OrderAPI.UpdateInplace, Role: employee},
		{Name: "DeleteInplace", Method: http.MethodDelete, Pattern: "/orders/inplace/:id", HandlerFunc: h.OrderAPI.DeleteInplace, Role: employee},

		{Name: "CreateServiceRequest", Method: http.MethodPost, Pattern: "/orders/online-service", HandlerFunc: h.OrderAPI.CreateServiceRequest},
		{Name: "ListServiceRequestsByCustomer", Method: http.MethodGet, Pattern: "/orders/online-service/customer/:id", HandlerFunc: h.OrderAPI.ListServiceRequestsByCustomer},
		{Name: "ListAvailableServiceRequests", Method: http.MethodGet, Pattern: "/orders/online-service/employee/available", HandlerFunc: h.OrderAPI.ListAvailableServiceRequests, Role: employee},
		{Name: "AcceptServiceRequest", Method: http.MethodPut, Pattern: "/orders/online-service/employee/accept", HandlerFunc: h.OrderAPI.AcceptServiceRequest, Role: employee},
		{Name: "ProgressServiceRequest", Method: http.MethodPut, Pattern: "/orders/online-service/employee/update/:id", HandlerFunc: h.OrderAPI.ProgressServiceRequest, Role: employee},
		{Name: "GetServiceRequest", Method: http.MethodGet, Pattern: "/orders/online-service/:id", HandlerFunc: h.OrderAPI.GetServiceRequest},
		{Name: "UpdateServiceRequest", Method: http.MethodPut, Pattern: "/orders/online-service/:id", HandlerFunc: h.OrderAPI.UpdateServiceRequest},

		{Name: "ListPurchases", Method: http.MethodGet, Pattern: "/orders/online-purchase", HandlerFunc: h.OrderAPI.ListPurchases, Role: employee},
		{Name: "PlacePurchase", Method: http.MethodPost, Pattern: "/orders/online-purchase", HandlerFunc: h.OrderAPI.PlacePurchase},
		{Name: "ListOwnPurchases", Method: http.MethodGet, Pattern: "/orders/online-purchase/customer", HandlerFunc: h.OrderAPI.ListOwnPurchases},
		{Name: "GetPurchase", Method: http.MethodGet, Pattern: "/orders/online-purchase/:id", HandlerFunc: h.OrderAPI.GetPurchase},
		{Name: "PayPurchase", Method: http.MethodPut, Pattern: "/orders/online-purchase/:id/pay", HandlerFunc: h.OrderAPI.PayPurchase},
		{Name: "UpdatePurchaseStatus", Method: http.MethodPut, Pattern: "/orders/online-purchase/:id/status", HandlerFunc: h.OrderAPI.UpdatePurchaseStatus, Role: employee},

		{Name: "ListEmployeeSales", Method: http.MethodGet, Pattern: "/orders/employee/my/sales/:id", HandlerFunc: h.OrderAPI.ListEmployeeSales, Role: employee},
	}
}
