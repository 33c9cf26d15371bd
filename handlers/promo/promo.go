package promo

import (
	"github.com/gofiber/fiber/v2"
	"github.com/naeemsabir/sopcraft-api/handlers"
	"github.com/naeemsabir/sopcraft-api/services"
	"github.com/naeemsabir/sopcraft-api/utils/response"
	"github.com/naeemsabir/sopcraft-api/utils/validation"
)

// PromoHandler handles promo code validation requests
type PromoHandler struct {
	validator *validation.Validator
	promos    *services.PromoService
	pricing   services.Pricing
}

// NewPromoHandler creates a new promo handler
func NewPromoHandler(promos *services.PromoService, pricing services.Pricing) *PromoHandler {
	return &PromoHandler{
		validator: validation.NewValidator(),
		promos:    promos,
		pricing:   pricing,
	}
}

// ValidateRequest represents a dry-run promo validation request
type ValidateRequest struct {
	Code        string `json:"code" validate:"required,max=50"`
	PackageTier string `json:"package_tier" validate:"required,oneof=standard expert"`
}

// Validate handles POST /api/v1/promos/validate. It is a dry run: nothing is
// redeemed, the caller just learns the price a valid code would produce.
func (h *PromoHandler) Validate(c *fiber.Ctx) error {
	var req ValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	basePrice, err := h.pricing.BasePrice(req.PackageTier)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	result, err := h.promos.Validate(c.Context(), req.Code, basePrice)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, result)
}
