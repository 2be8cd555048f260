package commerceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	supplierhttpmapper "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/adapters/http/mapper"
	supplierports "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/ports"
)

type SupplierAPI struct {
	service supplierports.Service
}

func NewSupplierAPI(service supplierports.Service) SupplierAPI {
	return SupplierAPI{service: service}
}

// Post /suppliers
func (api *SupplierAPI) CreateSupplier(c *gin.Context) {
	var payload supplierhttpmapper.SupplierRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	supplier, err := api.service.Create(c.Request.Context(), supplierhttpmapper.ToSupplierInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "New Supplier Created", "supplier": supplierhttpmapper.FromDomainSupplier(supplier)})
}

// Get /suppliers
// Active suppliers only
func (api *SupplierAPI) ListSuppliers(c *gin.Context) {
	suppliers, err := api.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "suppliers": supplierhttpmapper.FromDomainSuppliers(suppliers)})
}

// Get /suppliers/:id
func (api *SupplierAPI) GetSupplier(c *gin.Context) {
	supplier, err := api.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "supplier": supplierhttpmapper.FromDomainSupplier(supplier)})
}

// Put /suppliers/:id
func (api *SupplierAPI) UpdateSupplier(c *gin.Context) {
	var payload supplierhttpmapper.SupplierRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	supplier, err := api.service.Update(c.Request.Context(), c.Param("id"), supplierhttpmapper.ToSupplierInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Supplier Updated", "supplier": supplierhttpmapper.FromDomainSupplier(supplier)})
}

// Delete /suppliers/:id
// Referenced suppliers are deactivated instead of removed
func (api *SupplierAPI) DeleteSupplier(c *gin.Context) {
	supplier, err := api.service.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Supplier Deleted", "supplier": supplierhttpmapper.FromDomainSupplier(supplier)})
}
