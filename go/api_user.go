package commerceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/go-gin-commerce-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/go-gin-commerce-api/internal/domains/users/ports"
)

// UserAPI manages employee and customer accounts.
type UserAPI struct {
	service userports.Service
}

// NewUserAPI wires dependencies.
func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service}
}

// Get /users
// All users, active first
func (api *UserAPI) ListUsers(c *gin.Context) {
	users, err := api.service.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "users": userhttpmapper.FromDomainUsers(users)})
}

// Get /users/employee
func (api *UserAPI) ListEmployees(c *gin.Context) {
	users, err := api.service.ListEmployees(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "employees": userhttpmapper.FromDomainUsers(users)})
}

// Post /users/employee
func (api *UserAPI) CreateEmployee(c *gin.Context) {
	var payload userhttpmapper.EmployeeRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := api.service.CreateEmployee(c.Request.Context(), userhttpmapper.ToEmployeeInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "User " + user.Username + " was created",
		"employee": userhttpmapper.FromDomainUser(user),
	})
}

// Get /users/employee/:id
func (api *UserAPI) GetEmployee(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	user, err := api.service.GetEmployee(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "employee": userhttpmapper.FromDomainUser(user)})
}

// Put /users/employee/:id
func (api *UserAPI) UpdateEmployee(c *gin.Context) {
	var payload userhttpmapper.EmployeeRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := api.service.UpdateEmployee(c.Request.Context(), c.Param("id"), userhttpmapper.ToEmployeeInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "User " + user.Username + " was updated",
		"employee": userhttpmapper.FromDomainUser(user),
	})
}

// Delete /users/employee/:id
// Deactivates employees that still handle orders
func (api *UserAPI) DeleteEmployee(c *gin.Context) {
	user, err := api.service.DeleteEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee removed", "employee": userhttpmapper.FromDomainUser(user)})
}

// Get /users/manage/customer
func (api *UserAPI) ListCustomers(c *gin.Context) {
	users, err := api.service.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "customers": userhttpmapper.FromDomainUsers(users)})
}

// Post /users/manage/customer
func (api *UserAPI) CreateCustomer(c *gin.Context) {
	var payload userhttpmapper.CustomerRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := api.service.CreateCustomer(c.Request.Context(), userhttpmapper.ToCustomerInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Customer " + user.Username + " was created",
		"customer": userhttpmapper.FromDomainUser(user),
	})
}

// Get /users/manage/customer/:id
func (api *UserAPI) GetCustomer(c *gin.Context) {
	user, err := api.service.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "customer": userhttpmapper.FromDomainUser(user)})
}

// Put /users/manage/customer/:id
func (api *UserAPI) UpdateCustomer(c *gin.Context) {
	var payload userhttpmapper.CustomerRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := api.service.UpdateCustomer(c.Request.Context(), c.Param("id"), userhttpmapper.ToCustomerInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer info updated", "customer": userhttpmapper.FromDomainUser(user)})
}

// Delete /users/manage/customer/:id
// Deactivates customers with orders
func (api *UserAPI) DeleteCustomer(c *gin.Context) {
	user, err := api.service.DeleteCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer removed", "customer": userhttpmapper.FromDomainUser(user)})
}
