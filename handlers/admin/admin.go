package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/naeemsabir/sopcraft-api/handlers"
	"github.com/naeemsabir/sopcraft-api/model"
	"github.com/naeemsabir/sopcraft-api/services"
	"github.com/naeemsabir/sopcraft-api/utils/response"
	"github.com/naeemsabir/sopcraft-api/utils/validation"
	"gorm.io/gorm"
)

// AdminHandler handles the admin review queue and promo code management
type AdminHandler struct {
	db            *gorm.DB
	validator     *validation.Validator
	verifications *services.VerificationService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, verifications *services.VerificationService) *AdminHandler {
	return &AdminHandler{
		db:            db,
		validator:     validation.NewValidator(),
		verifications: verifications,
	}
}

// ListVerifications handles GET /api/v1/admin/verifications?status=
func (h *AdminHandler) ListVerifications(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	status := c.Query("status")
	switch status {
	case "", model.VerificationStatusPending, model.VerificationStatusApproved, model.VerificationStatusRejected:
	default:
		return response.BadRequest(c, "status must be pending, approved or rejected")
	}

	verifications, total, err := h.verifications.ListByStatus(c.Context(), status, page, limit)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	pagination := response.CalculatePagination(page, limit, total)
	return response.Paginated(c, verifications, pagination)
}

// ReviewRequest carries the admin's notes for an approve or reject decision
type ReviewRequest struct {
	Notes string `json:"notes"`
}

// ApproveVerification handles POST /api/v1/admin/verifications/:id/approve
func (h *AdminHandler) ApproveVerification(c *fiber.Ctx) error {
	verificationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid verification id")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request body")
	}

	verification, err := h.verifications.Approve(c.Context(), verificationID, req.Notes)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.SuccessWithMessage(c, "Verification approved", verification)
}

// RejectVerification handles POST /api/v1/admin/verifications/:id/reject
func (h *AdminHandler) RejectVerification(c *fiber.Ctx) error {
	verificationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid verification id")
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	verification, err := h.verifications.Reject(c.Context(), verificationID, req.Notes)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.SuccessWithMessage(c, "Verification rejected", verification)
}
