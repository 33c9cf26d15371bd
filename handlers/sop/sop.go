package sop

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/naeemsabir/sopcraft-api/handlers"
	"github.com/naeemsabir/sopcraft-api/model"
	"github.com/naeemsabir/sopcraft-api/services"
	"github.com/naeemsabir/sopcraft-api/utils/middleware"
	"github.com/naeemsabir/sopcraft-api/utils/response"
	"github.com/naeemsabir/sopcraft-api/utils/validation"
)

// SOPHandler handles SOP lifecycle requests
type SOPHandler struct {
	validator  *validation.Validator
	sops       *services.SOPService
	generation *services.GenerationService
}

// NewSOPHandler creates a new SOP handler
func NewSOPHandler(sops *services.SOPService, generation *services.GenerationService) *SOPHandler {
	return &SOPHandler{
		validator:  validation.NewValidator(),
		sops:       sops,
		generation: generation,
	}
}

// sopView shapes an SOP for API responses, truncating generated content for
// unpaid records
func sopView(sop *model.SOP) fiber.Map {
	return fiber.Map{
		"id":                    sop.ID,
		"created_at":            sop.CreatedAt,
		"updated_at":            sop.UpdatedAt,
		"country":               sop.Country,
		"university":            sop.University,
		"course":                sop.Course,
		"degree_level":          sop.DegreeLevel,
		"full_name":             sop.FullName,
		"email":                 sop.Email,
		"academic_score":        sop.AcademicScore,
		"current_qualification": sop.CurrentQualification,
		"ielts_score":           sop.IELTSScore,
		"gap_years":             sop.GapYears,
		"motivation":            sop.Motivation,
		"future_plan":           sop.FuturePlan,
		"visa_refusal_reason":   sop.VisaRefusalReason,
		"generated_content":     services.Preview(sop),
		"status":                sop.Status,
		"payment_status":        sop.PaymentStatus,
		"is_locked":             sop.IsLocked,
		"package_tier":          sop.PackageTier,
	}
}

// parseSOPID reads the :id route parameter as a UUID
func parseSOPID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// CreateSOP handles POST /api/v1/sops
func (h *SOPHandler) CreateSOP(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req services.CreateSOPRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	sop, err := h.sops.Create(c.Context(), userID, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Created(c, sopView(sop))
}

// ListSOPs handles GET /api/v1/sops
func (h *SOPHandler) ListSOPs(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	sops, err := h.sops.ListByUser(c.Context(), userID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	views := make([]fiber.Map, 0, len(sops))
	for i := range sops {
		views = append(views, sopView(&sops[i]))
	}

	return response.Success(c, views)
}

// GetSOP handles GET /api/v1/sops/:id
func (h *SOPHandler) GetSOP(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	sopID, err := parseSOPID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid SOP id")
	}

	sop, err := h.sops.GetByID(c.Context(), userID, sopID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, sopView(sop))
}

// UpdateProfile handles PUT /api/v1/sops/:id/profile
func (h *SOPHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	sopID, err := parseSOPID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid SOP id")
	}

	var req services.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	sop, err := h.sops.UpdateProfileFields(c.Context(), userID, sopID, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, sopView(sop))
}

// UpdateTarget handles PUT /api/v1/sops/:id/target
func (h *SOPHandler) UpdateTarget(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	sopID, err := parseSOPID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid SOP id")
	}

	var req services.TargetUpdate
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	sop, err := h.sops.UpdateTargetFields(c.Context(), userID, sopID, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, sopView(sop))
}

// UpdateContentRequest represents an owner edit of the drafted text
type UpdateContentRequest struct {
	Content string `json:"content" validate:"required"`
}

// UpdateContent handles PUT /api/v1/sops/:id/content
func (h *SOPHandler) UpdateContent(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	sopID, err := parseSOPID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid SOP id")
	}

	var req UpdateContentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	sop, err := h.sops.UpdateGeneratedContent(c.Context(), userID, sopID, req.Content)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, sopView(sop))
}

// Generate handles POST /api/v1/sops/:id/generate
func (h *SOPHandler) Generate(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	sopID, err := parseSOPID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid SOP id")
	}

	sop, err := h.generation.Generate(c.Context(), userID, sopID)
	if err != nil {
		// Regeneration without payment is a 402, not a generic validation error
		if ve, ok := services.IsValidationError(err); ok && ve.Field == "payment" {
			return response.PaymentRequired(c, ve.Message)
		}
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, sopView(sop))
}

// GetSensitive handles GET /api/v1/sops/:id/sensitive
func (h *SOPHandler) GetSensitive(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	sopID, err := parseSOPID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid SOP id")
	}

	details, err := h.sops.GetSensitiveDetails(c.Context(), userID, sopID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, details)
}

// UpdateSensitive handles PUT /api/v1/sops/:id/sensitive
func (h *SOPHandler) UpdateSensitive(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	sopID, err := parseSOPID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid SOP id")
	}

	var req services.SensitiveDetailsView
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.sops.UpdateSensitiveDetails(c.Context(), userID, sopID, req); err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, fiber.Map{"message": "Sensitive details updated"})
}
