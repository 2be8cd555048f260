package commerceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/go-gin-commerce-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/go-gin-commerce-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/platform/auth"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
)

// AuthAPI serves login, registration and the caller's own profile.
type AuthAPI struct {
	service userports.Service
}

func NewAuthAPI(service userports.Service) AuthAPI {
	return AuthAPI{service: service}
}

// Post /auth/login
func (api *AuthAPI) Login(c *gin.Context) {
	var payload userhttpmapper.LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := api.service.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Login successful",
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"user":      userhttpmapper.FromDomainUser(result.User),
	})
}

// Post /auth/register
// Creates a customer account
func (api *AuthAPI) Register(c *gin.Context) {
	var payload userhttpmapper.CustomerRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := api.service.Register(c.Request.Context(), userhttpmapper.ToCustomerInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Customer " + user.Username + " was created",
		"user":    userhttpmapper.FromDomainUser(user),
	})
}

// Post /auth/logout
func (api *AuthAPI) Logout(c *gin.Context) {
	if err := api.service.Logout(c.Request.Context(), auth.SessionIDFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Get /profile
func (api *AuthAPI) GetProfile(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	user, err := api.service.GetProfile(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "user": userhttpmapper.FromDomainUser(user)})
}

// Put /profile
func (api *AuthAPI) UpdateProfile(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload userhttpmapper.ProfileRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := api.service.UpdateProfile(c.Request.Context(), actor, userhttpmapper.ToProfileUpdateInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": userhttpmapper.FromDomainUser(user)})
}

// requireActor reads the authenticated actor. Routes are always behind auth.Middleware,
// so a miss means the router was wired wrong.
func requireActor(c *gin.Context) (authz.Actor, bool) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		respondProblem(c, problemUnauthorized)
		return authz.Actor{}, false
	}
	return actor, true
}
