package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/naeemsabir/sopcraft-api/model"
	"github.com/naeemsabir/sopcraft-api/utils/validation"
	"gorm.io/gorm"
)

// Pricing holds the package base prices in PKR
type Pricing struct {
	Standard int
	Expert   int
}

// BasePrice returns the base price for a package tier
func (p Pricing) BasePrice(tier string) (int, error) {
	switch tier {
	case model.PackageTierStandard:
		return p.Standard, nil
	case model.PackageTierExpert:
		return p.Expert, nil
	default:
		return 0, NewValidationError("package_tier", "package tier must be standard or expert")
	}
}

// VerificationService handles manual payment verification submissions and the
// admin approve/reject state machine
type VerificationService struct {
	db      *gorm.DB
	promos  *PromoService
	sops    *SOPService
	pricing Pricing
}

// NewVerificationService creates a new verification service
func NewVerificationService(db *gorm.DB, promos *PromoService, sops *SOPService, pricing Pricing) *VerificationService {
	return &VerificationService{
		db:      db,
		promos:  promos,
		sops:    sops,
		pricing: pricing,
	}
}

// SubmitRequest is the user-facing payload claiming a completed transfer
type SubmitRequest struct {
	PaymentMethod string     `json:"payment_method" validate:"required,oneof=jazzcash easypaisa hbl"`
	SenderName    string     `json:"sender_name" validate:"required,max=255"`
	TransactionID string     `json:"transaction_id" validate:"required"`
	SOPID         *uuid.UUID `json:"sop_id"`
	PackageTier   string     `json:"package_tier" validate:"required,oneof=standard expert"`
	PromoCode     string     `json:"promo_code"`
}

// Submit records a pending verification. The amount is computed server-side
// from the tier base price and the validated promo discount; the client never
// supplies a price.
func (s *VerificationService) Submit(ctx context.Context, userID uint, req SubmitRequest) (*model.PaymentVerification, error) {
	// 1. Validate inputs beyond struct tags
	senderName := strings.TrimSpace(req.SenderName)
	if senderName == "" {
		return nil, NewValidationError("sender_name", "sender name is required")
	}

	tid := strings.TrimSpace(req.TransactionID)
	if ok, msg := validation.ValidateTransactionID(tid); !ok {
		return nil, NewValidationError("transaction_id", msg)
	}

	// 2. Compute the amount from the tier base price
	basePrice, err := s.pricing.BasePrice(req.PackageTier)
	if err != nil {
		return nil, err
	}

	amount := basePrice
	var promoCode *string

	// 3. Apply a promo discount if a code was supplied. The code is only
	// recorded here; its usage counter moves at approval time.
	if code := validation.NormalizePromoCode(req.PromoCode); code != "" {
		result, err := s.promos.Validate(ctx, code, basePrice)
		if err != nil {
			return nil, err
		}
		if !result.IsValid {
			return nil, NewValidationError("promo_code", result.ErrorMessage)
		}
		amount = result.FinalPrice
		promoCode = &code
	}

	// 4. Verify the SOP belongs to the submitter
	if req.SOPID != nil {
		if _, err := s.sops.GetByID(ctx, userID, *req.SOPID); err != nil {
			return nil, err
		}
	}

	tier := req.PackageTier
	verification := model.PaymentVerification{
		UserID:        userID,
		SOPID:         req.SOPID,
		PaymentMethod: req.PaymentMethod,
		SenderName:    senderName,
		TransactionID: tid,
		Amount:        amount,
		PackageTier:   &tier,
		PromoCode:     promoCode,
		Status:        model.VerificationStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(&verification).Error; err != nil {
		return nil, fmt.Errorf("failed to create verification: %w", err)
	}

	return &verification, nil
}

// AttachScreenshot stores the uploaded payment-proof URL on a pending
// verification owned by the user
func (s *VerificationService) AttachScreenshot(ctx context.Context, userID uint, verificationID uuid.UUID, url string) error {
	result := s.db.WithContext(ctx).
		Model(&model.PaymentVerification{}).
		Where("id = ? AND user_id = ? AND status = ?", verificationID, userID, model.VerificationStatusPending).
		UpdateColumn("screenshot_url", url)
	if result.Error != nil {
		return fmt.Errorf("failed to attach screenshot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns the user's own verification submissions, newest first
func (s *VerificationService) ListByUser(ctx context.Context, userID uint) ([]model.PaymentVerification, error) {
	var verifications []model.PaymentVerification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&verifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}
	return verifications, nil
}

// ListByStatus returns verifications for admin review, optionally filtered
func (s *VerificationService) ListByStatus(ctx context.Context, status string, page, limit int) ([]model.PaymentVerification, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.PaymentVerification{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count verifications: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var verifications []model.PaymentVerification
	err := query.
		Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&verifications).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list verifications: %w", err)
	}

	return verifications, total, nil
}

// Approve transitions a pending verification to approved and applies its
// payment effects atomically: the SOP is locked and marked paid, and any
// recorded promo code is redeemed. The conditional UPDATE on status=pending
// serializes two admins racing on the same row; the loser gets
// ErrAlreadyProcessed and nothing else happens.
func (s *VerificationService) Approve(ctx context.Context, verificationID uuid.UUID, notes string) (*model.PaymentVerification, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// 1. Load the verification
	var verification model.PaymentVerification
	if err := tx.Where("id = ?", verificationID).First(&verification).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch verification: %w", err)
	}

	// 2. Transition pending -> approved; the guard makes the transition
	// fire at most once
	updates := map[string]interface{}{
		"status": model.VerificationStatusApproved,
	}
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		updates["admin_notes"] = trimmed
	}

	result := tx.Model(&model.PaymentVerification{}).
		Where("id = ? AND status = ?", verificationID, model.VerificationStatusPending).
		Updates(updates)
	if result.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to approve verification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrAlreadyProcessed
	}

	// 3. Apply the payment to the linked SOP
	if verification.SOPID != nil {
		tier := model.PackageTierStandard
		if verification.PackageTier != nil {
			tier = *verification.PackageTier
		}
		if err := s.sops.ApplyPayment(tx, *verification.SOPID, tier); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// 4. Redeem the recorded promo code. A code that ran out since
	// submission fails the whole approval so the discount is never honored
	// past its cap.
	if verification.PromoCode != nil && *verification.PromoCode != "" {
		if err := s.promos.Redeem(tx, *verification.PromoCode); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}

	verification.Status = model.VerificationStatusApproved
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		verification.AdminNotes = &trimmed
	}
	return &verification, nil
}

// Reject transitions a pending verification to rejected. Notes are mandatory:
// the user needs to know why their transfer was not accepted. Nothing but the
// verification row is touched.
func (s *VerificationService) Reject(ctx context.Context, verificationID uuid.UUID, notes string) (*model.PaymentVerification, error) {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return nil, NewValidationError("admin_notes", "rejection notes are required")
	}

	var verification model.PaymentVerification
	if err := s.db.WithContext(ctx).Where("id = ?", verificationID).First(&verification).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch verification: %w", err)
	}

	result := s.db.WithContext(ctx).
		Model(&model.PaymentVerification{}).
		Where("id = ? AND status = ?", verificationID, model.VerificationStatusPending).
		Updates(map[string]interface{}{
			"status":      model.VerificationStatusRejected,
			"admin_notes": trimmed,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to reject verification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrAlreadyProcessed
	}

	verification.Status = model.VerificationStatusRejected
	verification.AdminNotes = &trimmed
	return &verification, nil
}
