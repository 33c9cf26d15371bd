package admin

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/naeemsabir/sopcraft-api/model"
	"github.com/naeemsabir/sopcraft-api/utils/response"
	"github.com/naeemsabir/sopcraft-api/utils/validation"
	"gorm.io/gorm"
)

// CreatePromoRequest represents a promo code creation request
type CreatePromoRequest struct {
	Code          string     `json:"code" validate:"required,max=50"`
	DiscountType  string     `json:"discount_type" validate:"required,oneof=fixed percentage"`
	DiscountValue int        `json:"discount_value" validate:"required,min=1"`
	MaxUses       *int       `json:"max_uses" validate:"omitempty,min=1"`
	ExpiresAt     *time.Time `json:"expires_at"`
	IsActive      *bool      `json:"is_active"`
}

// UpdatePromoRequest represents a partial promo code update. The code and
// discount are immutable once created; only the cap, expiry and active flag
// can change.
type UpdatePromoRequest struct {
	MaxUses   *int       `json:"max_uses" validate:"omitempty,min=1"`
	ExpiresAt *time.Time `json:"expires_at"`
	IsActive  *bool      `json:"is_active"`
}

// ListPromoCodes handles GET /api/v1/admin/promo-codes
func (h *AdminHandler) ListPromoCodes(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := h.db.Model(&model.PromoCode{}).Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count promo codes")
	}

	var promos []model.PromoCode
	err := h.db.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&promos).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to list promo codes")
	}

	pagination := response.CalculatePagination(page, limit, total)
	return response.Paginated(c, promos, pagination)
}

// CreatePromoCode handles POST /api/v1/admin/promo-codes
func (h *AdminHandler) CreatePromoCode(c *fiber.Ctx) error {
	var req CreatePromoRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.DiscountType == model.DiscountTypePercentage && req.DiscountValue > 100 {
		return response.BadRequest(c, "Percentage discounts must be between 1 and 100")
	}

	code := validation.NormalizePromoCode(req.Code)
	if code == "" {
		return response.BadRequest(c, "Code is required")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	promo := model.PromoCode{
		Code:          code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxUses:       req.MaxUses,
		ExpiresAt:     req.ExpiresAt,
		IsActive:      isActive,
	}

	if err := h.db.Create(&promo).Error; err != nil {
		return response.Conflict(c, "A promo code with this code already exists")
	}

	return response.Created(c, promo)
}

// UpdatePromoCode handles PATCH /api/v1/admin/promo-codes/:id
func (h *AdminHandler) UpdatePromoCode(c *fiber.Ctx) error {
	promoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid promo code id")
	}

	var req UpdatePromoRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var promo model.PromoCode
	if err := h.db.Where("id = ?", promoID).First(&promo).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Promo code not found")
		}
		return response.InternalServerError(c, "Failed to fetch promo code")
	}

	updates := map[string]interface{}{}
	if req.MaxUses != nil {
		updates["max_uses"] = *req.MaxUses
	}
	if req.ExpiresAt != nil {
		updates["expires_at"] = *req.ExpiresAt
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return response.Success(c, promo)
	}

	if err := h.db.Model(&promo).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update promo code")
	}

	return response.Success(c, promo)
}

// DeletePromoCode handles DELETE /api/v1/admin/promo-codes/:id. Deletion is
// soft; past verifications keep their recorded code string.
func (h *AdminHandler) DeletePromoCode(c *fiber.Ctx) error {
	promoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid promo code id")
	}

	result := h.db.Where("id = ?", promoID).Delete(&model.PromoCode{})
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete promo code")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Promo code not found")
	}

	return response.NoContent(c)
}
