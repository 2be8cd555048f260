package commerceserver

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	producthttpmapper "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/ports"
)

// ProductAPI wires HTTP transport with the catalog service.
type ProductAPI struct {
	service catalogports.Service
}

func NewProductAPI(service catalogports.Service) ProductAPI {
	return ProductAPI{service: service}
}

type imagesRequest struct {
	Images []string `json:"images"`
}

type stateRequest struct {
	State string `json:"state"`
}

// Get /products
// Every product, drafts included
func (api *ProductAPI) ListProducts(c *gin.Context) {
	products, err := api.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "products": producthttpmapper.FromDomainProducts(products)})
}

// Post /products
func (api *ProductAPI) CreateProduct(c *gin.Context) {
	var payload producthttpmapper.ProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := api.service.Create(c.Request.Context(), producthttpmapper.ToProductInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product Created", "product": producthttpmapper.FromDomainProduct(product)})
}

// Get /products/showroom
func (api *ProductAPI) ListShowroom(c *gin.Context) {
	products, err := api.service.ListShowroom(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "products": producthttpmapper.FromDomainProducts(products)})
}

// Get /products/cart-items?items=<json array>
// Returns the cart entries that can be bought right now
func (api *ProductAPI) CheckCart(c *gin.Context) {
	var raw string
	if err := runtime.BindQueryParameter("form", true, true, "items", c.Request.URL.Query(), &raw); err != nil {
		respondBindError(c, err)
		return
	}
	var entries []producthttpmapper.CartEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		respondBindError(c, err)
		return
	}
	matches, err := api.service.CheckCart(c.Request.Context(), producthttpmapper.ToCartLines(entries))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "items": producthttpmapper.FromCartMatches(entries, matches)})
}

// Get /products/:id
func (api *ProductAPI) GetProduct(c *gin.Context) {
	product, err := api.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "product": producthttpmapper.FromDomainProduct(product)})
}

// Put /products/:id
func (api *ProductAPI) UpdateProduct(c *gin.Context) {
	var payload producthttpmapper.ProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := api.service.Update(c.Request.Context(), c.Param("id"), producthttpmapper.ToProductInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": producthttpmapper.FromDomainProduct(product)})
}

// Delete /products/:id
func (api *ProductAPI) DeleteProduct(c *gin.Context) {
	product, err := api.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed", "product": producthttpmapper.FromDomainProduct(product)})
}

// Put /products/:id/images
// Replaces all four images
func (api *ProductAPI) UpdateImages(c *gin.Context) {
	var payload imagesRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := api.service.UpdateImages(c.Request.Context(), c.Param("id"), payload.Images)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product images updated", "product": producthttpmapper.FromDomainProduct(product)})
}

// Put /products/:id/switch/state
func (api *ProductAPI) SwitchState(c *gin.Context) {
	var payload stateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := api.service.SwitchState(c.Request.Context(), c.Param("id"), payload.State)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product State Updated", "product": producthttpmapper.FromDomainProduct(product)})
}
