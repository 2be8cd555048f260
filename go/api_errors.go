package commerceserver

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-gin-commerce-api/internal/domains/catalog/ports"
	orderapp "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/application"
	orderdomain "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
	supplierapp "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/application"
	supplierports "github.com/Apurer/go-gin-commerce-api/internal/domains/suppliers/ports"
	userapp "github.com/Apurer/go-gin-commerce-api/internal/domains/users/application"
	userports "github.com/Apurer/go-gin-commerce-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/authz"
	apierrors "github.com/Apurer/go-gin-commerce-api/internal/shared/errors"
)

const invalidInputMessage = "Invalid Input"

var (
	problemUnauthorized = apierrors.ErrUnauthorized
	problemInvalid      = apierrors.ErrUnprocessable.WithMessage(invalidInputMessage)
)

// responder maps every domain error the handlers can see onto a problem document.
var responder = apierrors.NewResponder("",
	apierrors.MapSentinel(authz.ErrUnauthorized, problemUnauthorized),
	apierrors.MapSentinel(userapp.ErrAuthentication, problemUnauthorized),

	apierrors.MapNotFound(userports.ErrNotFound, "User"),
	apierrors.MapNotFound(supplierports.ErrNotFound, "Supplier"),
	apierrors.MapNotFound(catalogports.ErrNotFound, "Product"),
	apierrors.MapNotFound(orderports.ErrNotFound, "Order"),

	apierrors.MapInvalid(userapp.ErrInvalidInput, invalidInputMessage),
	apierrors.MapInvalid(supplierapp.ErrInvalidInput, invalidInputMessage),
	apierrors.MapInvalid(catalogapp.ErrInvalidInput, invalidInputMessage),
	apierrors.MapInvalid(orderapp.ErrInvalidInput, invalidInputMessage),

	apierrors.MapConflict(userports.ErrDuplicateUsername),
	apierrors.MapConflict(catalogports.ErrInsufficientStock),
	apierrors.MapConflict(orderports.ErrInsufficientStock),
	apierrors.MapConflict(orderports.ErrAlreadyUndertaken),
	apierrors.MapConflict(orderports.ErrAlreadyPaid),
	apierrors.MapConflict(orderports.ErrStaleOrder),
	apierrors.MapConflict(orderports.ErrDuplicateOrder),
	apierrors.MapConflict(orderports.ErrIdempotencyConflict),
	apierrors.MapConflict(orderdomain.ErrStatusLocked),
	apierrors.MapConflict(orderdomain.ErrNotUndertaken),
)

// respondError maps err through the domain mappers. Unknown errors become an opaque 500.
func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

// respondBindError reports an unreadable request body.
func respondBindError(c *gin.Context, err error) {
	apierrors.Respond(c, problemInvalid.WithDetail(err.Error()))
}

func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}
