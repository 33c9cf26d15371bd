package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/naeemsabir/sopcraft-api/services"
	"github.com/naeemsabir/sopcraft-api/utils/response"
)

// ServiceError translates a service-layer error into the HTTP response
// envelope. Handlers call this instead of switching on errors themselves.
func ServiceError(c *fiber.Ctx, err error) error {
	if ve, ok := services.IsValidationError(err); ok {
		return response.ValidationError(c, ve)
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "")
	case errors.Is(err, services.ErrAlreadyProcessed):
		return response.Conflict(c, "Verification has already been processed")
	case errors.Is(err, services.ErrLockedField):
		return response.Locked(c, "These fields are locked after payment")
	case errors.Is(err, services.ErrPromoExhausted):
		return response.Conflict(c, "Promo code is no longer available")
	case errors.Is(err, services.ErrExternalService):
		return response.ServiceUnavailable(c, "Generation service is temporarily unavailable. Your SOP was not modified.")
	default:
		return response.InternalServerError(c, "")
	}
}
