package payment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/naeemsabir/sopcraft-api/handlers"
	"github.com/naeemsabir/sopcraft-api/model"
	"github.com/naeemsabir/sopcraft-api/services"
	"github.com/naeemsabir/sopcraft-api/services/spaces"
	"github.com/naeemsabir/sopcraft-api/utils/middleware"
	"github.com/naeemsabir/sopcraft-api/utils/response"
	"github.com/naeemsabir/sopcraft-api/utils/validation"
)

// PaymentHandler handles manual payment channels and verification submissions
type PaymentHandler struct {
	validator     *validation.Validator
	verifications *services.VerificationService
	storage       *spaces.Client
}

// NewPaymentHandler creates a new payment handler. The storage client may be
// nil when Spaces credentials are not configured; screenshot uploads return
// 503 in that case.
func NewPaymentHandler(verifications *services.VerificationService, storage *spaces.Client) *PaymentHandler {
	return &PaymentHandler{
		validator:     validation.NewValidator(),
		verifications: verifications,
		storage:       storage,
	}
}

// PaymentMethodInfo describes one manual payment channel
type PaymentMethodInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AccountTitle  string `json:"account_title"`
	AccountNumber string `json:"account_number"`
	SMSCode       string `json:"sms_code,omitempty"`
	HelperText    string `json:"helper_text"`
}

// paymentMethods lists the manual transfer channels. There is no payment
// gateway; users send money directly and submit the transaction ID for review.
var paymentMethods = []PaymentMethodInfo{
	{
		ID:            "jazzcash",
		Name:          "JazzCash",
		AccountTitle:  "Naeem Sabir",
		AccountNumber: "0322 4684181",
		SMSCode:       "8558",
		HelperText:    "Enter the TID sent by 8558.",
	},
	{
		ID:            "easypaisa",
		Name:          "Easypaisa",
		AccountTitle:  "Naeem Sabir",
		AccountNumber: "0322 4684181",
		SMSCode:       "3737",
		HelperText:    "Enter the TID sent by 3737.",
	},
	{
		ID:            "hbl",
		Name:          "HBL Bank",
		AccountTitle:  "Naeem Sabir",
		AccountNumber: "01197991957003",
		HelperText:    "Enter the Transaction Ref Number from your receipt.",
	},
}

// GetPaymentMethods handles GET /api/v1/payments/methods
func (h *PaymentHandler) GetPaymentMethods(c *fiber.Ctx) error {
	return response.Success(c, paymentMethods)
}

// SubmitVerification handles POST /api/v1/payments/verifications
func (h *PaymentHandler) SubmitVerification(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req services.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	verification, err := h.verifications.Submit(c.Context(), userID, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Created(c, verificationView(verification))
}

// ListVerifications handles GET /api/v1/payments/verifications
func (h *PaymentHandler) ListVerifications(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	verifications, err := h.verifications.ListByUser(c.Context(), userID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}

	views := make([]fiber.Map, 0, len(verifications))
	for i := range verifications {
		views = append(views, verificationView(&verifications[i]))
	}

	return response.Success(c, views)
}

// UploadScreenshot handles POST /api/v1/payments/verifications/:id/screenshot
func (h *PaymentHandler) UploadScreenshot(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	if h.storage == nil {
		return response.ServiceUnavailable(c, "Screenshot uploads are not available")
	}

	verificationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid verification id")
	}

	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		return response.BadRequest(c, "A screenshot file is required")
	}

	if fileHeader.Size > spaces.MaxScreenshotSize {
		return response.BadRequest(c, "Screenshot must be 5 MB or smaller")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.storage.UploadScreenshot(c.Context(), userID, fileHeader.Filename, file, contentType)
	if err != nil {
		return response.BadRequest(c, "Only JPEG, PNG and WebP screenshots are accepted")
	}

	if err := h.verifications.AttachScreenshot(c.Context(), userID, verificationID, url); err != nil {
		return handlers.ServiceError(c, err)
	}

	return response.Success(c, fiber.Map{"screenshot_url": url})
}

// verificationView shapes a verification for API responses. Admin notes are
// included so a rejected user sees why.
func verificationView(v *model.PaymentVerification) fiber.Map {
	return fiber.Map{
		"id":             v.ID,
		"created_at":     v.CreatedAt,
		"updated_at":     v.UpdatedAt,
		"sop_id":         v.SOPID,
		"payment_method": v.PaymentMethod,
		"sender_name":    v.SenderName,
		"transaction_id": v.TransactionID,
		"amount":         v.Amount,
		"package_tier":   v.PackageTier,
		"promo_code":     v.PromoCode,
		"screenshot_url": v.ScreenshotURL,
		"status":         v.Status,
		"admin_notes":    v.AdminNotes,
	}
}
