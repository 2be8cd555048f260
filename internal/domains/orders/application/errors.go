package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-commerce-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-commerce-api/internal/shared/geo"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrUnknownProgress is returned for a progress type other than price, completion or accepted.
	ErrUnknownProgress = errors.New("unknown progress type")
)

var invalidInputErrors = []error{
	domain.ErrEmptyCustomer,
	domain.ErrEmptyPayload,
	domain.ErrEmptyDescription,
	domain.ErrInvalidPrice,
	domain.ErrEmptyStatus,
	domain.ErrEmptyHandler,
	domain.ErrEmptyProblem,
	domain.ErrEmptyContact,
	domain.ErrPriceNotSet,
	domain.ErrInvalidServiceState,
	domain.ErrNoItems,
	domain.ErrInvalidQuantity,
	domain.ErrEmptyColor,
	domain.ErrEmptyProduct,
	domain.ErrIncompleteAddress,
	domain.ErrTotalMismatch,
	domain.ErrInvalidStatus,
	geo.ErrMissingCoordinates,
	geo.ErrLongitudeRange,
	geo.ErrLatitudeRange,
	ports.ErrProductNotFound,
	ports.ErrProductUnavailable,
	ErrUnknownProgress,
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range invalidInputErrors {
		if errors.Is(err, target) {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	return err
}
