package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/naeemsabir/sopcraft-api/model"
	"github.com/naeemsabir/sopcraft-api/utils/crypto"
	"gorm.io/gorm"
)

// SOPService manages SOP records, their sensitive details, and the
// payment-lock lifecycle
type SOPService struct {
	db     *gorm.DB
	cipher *crypto.FieldCipher
}

// NewSOPService creates a new SOP service
func NewSOPService(db *gorm.DB, cipher *crypto.FieldCipher) *SOPService {
	return &SOPService{db: db, cipher: cipher}
}

// CreateSOPRequest is the intake payload for a new SOP
type CreateSOPRequest struct {
	// Target fields
	Country     string `json:"country" validate:"required,max=100"`
	University  string `json:"university" validate:"required,max=255"`
	Course      string `json:"course" validate:"required,max=255"`
	DegreeLevel string `json:"degree_level" validate:"required,max=50"`

	// Profile fields
	FullName             string `json:"full_name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email"`
	AcademicScore        string `json:"academic_score" validate:"max=50"`
	CurrentQualification string `json:"current_qualification" validate:"max=255"`
	IELTSScore           string `json:"ielts_score" validate:"max=50"`
	GapYears             int    `json:"gap_years" validate:"gte=0,lte=30"`
	Motivation           string `json:"motivation"`
	FuturePlan           string `json:"future_plan"`
	VisaRefusalReason    string `json:"visa_refusal_reason"`

	// Sensitive details (stored encrypted in a separate table)
	HomeAddress         string `json:"home_address"`
	PhoneNumber         string `json:"phone_number"`
	FinancialBackground string `json:"financial_background"`
}

// Create stores a new SOP together with its sensitive-details row
func (s *SOPService) Create(ctx context.Context, userID uint, req CreateSOPRequest) (*model.SOP, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// 1. Create the SOP record
	sop := model.SOP{
		UserID:               userID,
		Country:              strings.TrimSpace(req.Country),
		University:           strings.TrimSpace(req.University),
		Course:               strings.TrimSpace(req.Course),
		DegreeLevel:          strings.TrimSpace(req.DegreeLevel),
		FullName:             strings.TrimSpace(req.FullName),
		Email:                strings.TrimSpace(req.Email),
		AcademicScore:        req.AcademicScore,
		CurrentQualification: req.CurrentQualification,
		IELTSScore:           req.IELTSScore,
		GapYears:             req.GapYears,
		Motivation:           req.Motivation,
		FuturePlan:           req.FuturePlan,
		VisaRefusalReason:    req.VisaRefusalReason,
		Status:               model.SOPStatusProcessing,
		PaymentStatus:        model.PaymentStatusUnpaid,
	}

	if err := tx.Create(&sop).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create SOP: %w", err)
	}

	// 2. Encrypt and store sensitive details alongside
	details, err := s.encryptDetails(sop.ID, userID, req.HomeAddress, req.PhoneNumber, req.FinancialBackground)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Create(details).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create sensitive details: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &sop, nil
}

// ListByUser returns all SOPs owned by the user, newest first
func (s *SOPService) ListByUser(ctx context.Context, userID uint) ([]model.SOP, error) {
	var sops []model.SOP
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list SOPs: %w", err)
	}
	return sops, nil
}

// GetByID returns a single SOP scoped to its owner
func (s *SOPService) GetByID(ctx context.Context, userID uint, sopID uuid.UUID) (*model.SOP, error) {
	var sop model.SOP
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sopID, userID).
		First(&sop).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch SOP: %w", err)
	}
	return &sop, nil
}

// ProfileUpdate carries the always-editable applicant fields
type ProfileUpdate struct {
	FullName             *string `json:"full_name" validate:"omitempty,max=255"`
	Email                *string `json:"email" validate:"omitempty,email"`
	AcademicScore        *string `json:"academic_score" validate:"omitempty,max=50"`
	CurrentQualification *string `json:"current_qualification" validate:"omitempty,max=255"`
	IELTSScore           *string `json:"ielts_score" validate:"omitempty,max=50"`
	GapYears             *int    `json:"gap_years" validate:"omitempty,gte=0,lte=30"`
	Motivation           *string `json:"motivation"`
	FuturePlan           *string `json:"future_plan"`
	VisaRefusalReason    *string `json:"visa_refusal_reason"`
}

// UpdateProfileFields updates profile fields regardless of lock state
func (s *SOPService) UpdateProfileFields(ctx context.Context, userID uint, sopID uuid.UUID, upd ProfileUpdate) (*model.SOP, error) {
	updates := map[string]interface{}{}
	if upd.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*upd.FullName)
	}
	if upd.Email != nil {
		updates["email"] = strings.TrimSpace(*upd.Email)
	}
	if upd.AcademicScore != nil {
		updates["academic_score"] = *upd.AcademicScore
	}
	if upd.CurrentQualification != nil {
		updates["current_qualification"] = *upd.CurrentQualification
	}
	if upd.IELTSScore != nil {
		updates["ielts_score"] = *upd.IELTSScore
	}
	if upd.GapYears != nil {
		updates["gap_years"] = *upd.GapYears
	}
	if upd.Motivation != nil {
		updates["motivation"] = *upd.Motivation
	}
	if upd.FuturePlan != nil {
		updates["future_plan"] = *upd.FuturePlan
	}
	if upd.VisaRefusalReason != nil {
		updates["visa_refusal_reason"] = *upd.VisaRefusalReason
	}

	if len(updates) == 0 {
		return s.GetByID(ctx, userID, sopID)
	}

	result := s.db.WithContext(ctx).
		Model(&model.SOP{}).
		Where("id = ? AND user_id = ?", sopID, userID).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update profile fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, userID, sopID)
}

// TargetUpdate carries the lockable application-target fields
type TargetUpdate struct {
	Country     *string `json:"country" validate:"omitempty,max=100"`
	University  *string `json:"university" validate:"omitempty,max=255"`
	Course      *string `json:"course" validate:"omitempty,max=255"`
	DegreeLevel *string `json:"degree_level" validate:"omitempty,max=50"`
}

// UpdateTargetFields updates the target fields. The `is_locked = false` guard
// in the WHERE clause is the enforcement point: a locked SOP is never
// modified, and the caller gets ErrLockedField instead of a silent no-op.
func (s *SOPService) UpdateTargetFields(ctx context.Context, userID uint, sopID uuid.UUID, upd TargetUpdate) (*model.SOP, error) {
	updates := map[string]interface{}{}
	if upd.Country != nil {
		updates["country"] = strings.TrimSpace(*upd.Country)
	}
	if upd.University != nil {
		updates["university"] = strings.TrimSpace(*upd.University)
	}
	if upd.Course != nil {
		updates["course"] = strings.TrimSpace(*upd.Course)
	}
	if upd.DegreeLevel != nil {
		updates["degree_level"] = strings.TrimSpace(*upd.DegreeLevel)
	}

	if len(updates) == 0 {
		return s.GetByID(ctx, userID, sopID)
	}

	result := s.db.WithContext(ctx).
		Model(&model.SOP{}).
		Where("id = ? AND user_id = ? AND is_locked = ?", sopID, userID, false).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update target fields: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Distinguish a missing SOP from a locked one
		var sop model.SOP
		if err := s.db.WithContext(ctx).
			Where("id = ? AND user_id = ?", sopID, userID).
			First(&sop).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to fetch SOP: %w", err)
		}
		return nil, ErrLockedField
	}

	return s.GetByID(ctx, userID, sopID)
}

// UpdateGeneratedContent lets the owner edit the drafted text. Allowed
// regardless of lock state; the lock protects what was paid for (the target),
// not the prose.
func (s *SOPService) UpdateGeneratedContent(ctx context.Context, userID uint, sopID uuid.UUID, content string) (*model.SOP, error) {
	result := s.db.WithContext(ctx).
		Model(&model.SOP{}).
		Where("id = ? AND user_id = ?", sopID, userID).
		Updates(map[string]interface{}{
			"generated_content": content,
			"status":            model.SOPStatusReady,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update content: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, userID, sopID)
}

// ApplyPayment flips the SOP to paid+locked and records the tier, all in one
// conditional UPDATE so the invariant between payment_status and is_locked
// can never be observed half-applied. Calling it twice is a no-op.
//
// Runs inside the caller's transaction (the approval flow).
func (s *SOPService) ApplyPayment(tx *gorm.DB, sopID uuid.UUID, tier string) error {
	var sop model.SOP
	if err := tx.Where("id = ?", sopID).First(&sop).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch SOP: %w", err)
	}

	result := tx.Model(&model.SOP{}).
		Where("id = ? AND payment_status <> ?", sopID, model.PaymentStatusPaid).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusPaid,
			"is_locked":      true,
			"package_tier":   tier,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to apply payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Already paid; idempotent
		return nil
	}

	// Mark the owner premium
	if err := tx.Model(&model.User{}).
		Where("id = ?", sop.UserID).
		UpdateColumn("is_premium", true).Error; err != nil {
		return fmt.Errorf("failed to mark user premium: %w", err)
	}

	return nil
}

// SensitiveDetailsView is the decrypted owner-facing form of the 1:1 row
type SensitiveDetailsView struct {
	HomeAddress         string `json:"home_address"`
	PhoneNumber         string `json:"phone_number"`
	FinancialBackground string `json:"financial_background"`
}

// GetSensitiveDetails decrypts and returns the owner's sensitive details
func (s *SOPService) GetSensitiveDetails(ctx context.Context, userID uint, sopID uuid.UUID) (*SensitiveDetailsView, error) {
	var details model.SOPSensitiveDetails
	err := s.db.WithContext(ctx).
		Where("sop_id = ? AND user_id = ?", sopID, userID).
		First(&details).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch sensitive details: %w", err)
	}

	view := &SensitiveDetailsView{}
	if view.HomeAddress, err = s.cipher.Decrypt(details.HomeAddress); err != nil {
		return nil, fmt.Errorf("failed to decrypt home address: %w", err)
	}
	if view.PhoneNumber, err = s.cipher.Decrypt(details.PhoneNumber); err != nil {
		return nil, fmt.Errorf("failed to decrypt phone number: %w", err)
	}
	if view.FinancialBackground, err = s.cipher.Decrypt(details.FinancialBackground); err != nil {
		return nil, fmt.Errorf("failed to decrypt financial background: %w", err)
	}

	return view, nil
}

// UpdateSensitiveDetails re-encrypts and stores the sensitive fields
func (s *SOPService) UpdateSensitiveDetails(ctx context.Context, userID uint, sopID uuid.UUID, upd SensitiveDetailsView) error {
	var details model.SOPSensitiveDetails
	err := s.db.WithContext(ctx).
		Where("sop_id = ? AND user_id = ?", sopID, userID).
		First(&details).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch sensitive details: %w", err)
	}

	encrypted, err := s.encryptDetails(sopID, userID, upd.HomeAddress, upd.PhoneNumber, upd.FinancialBackground)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).
		Model(&details).
		Updates(map[string]interface{}{
			"home_address":         encrypted.HomeAddress,
			"phone_number":         encrypted.PhoneNumber,
			"financial_background": encrypted.FinancialBackground,
		}).Error
}

func (s *SOPService) encryptDetails(sopID uuid.UUID, userID uint, homeAddress, phoneNumber, financials string) (*model.SOPSensitiveDetails, error) {
	details := &model.SOPSensitiveDetails{
		SOPID:  sopID,
		UserID: userID,
	}

	var err error
	if details.HomeAddress, err = s.cipher.Encrypt(homeAddress); err != nil {
		return nil, fmt.Errorf("failed to encrypt home address: %w", err)
	}
	if details.PhoneNumber, err = s.cipher.Encrypt(phoneNumber); err != nil {
		return nil, fmt.Errorf("failed to encrypt phone number: %w", err)
	}
	if details.FinancialBackground, err = s.cipher.Encrypt(financials); err != nil {
		return nil, fmt.Errorf("failed to encrypt financial background: %w", err)
	}

	return details, nil
}
