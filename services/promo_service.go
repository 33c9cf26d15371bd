package services

import (
	"context"
	"fmt"
	"time"

	"github.com/naeemsabir/sopcraft-api/model"
	"github.com/naeemsabir/sopcraft-api/utils/validation"
	"gorm.io/gorm"
)

// GenericPromoError is returned for every invalid-code case so callers cannot
// probe which codes exist, which are expired, and which are used up.
const GenericPromoError = "Invalid or Expired Code"

// PromoService handles discount code validation and redemption
type PromoService struct {
	db *gorm.DB
}

// NewPromoService creates a new promo service
func NewPromoService(db *gorm.DB) *PromoService {
	return &PromoService{db: db}
}

// PromoValidationResult is the outcome of validating a code against a price
type PromoValidationResult struct {
	IsValid       bool   `json:"is_valid"`
	Code          string `json:"code,omitempty"`
	DiscountType  string `json:"discount_type,omitempty"`
	DiscountValue int    `json:"discount_value,omitempty"`
	FinalPrice    int    `json:"final_price"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// Validate checks a promo code against the given base price. It never reports
// why a code failed, only that it did.
func (s *PromoService) Validate(ctx context.Context, code string, basePrice int) (*PromoValidationResult, error) {
	normalized := validation.NormalizePromoCode(code)
	if normalized == "" {
		return &PromoValidationResult{
			IsValid:      false,
			FinalPrice:   basePrice,
			ErrorMessage: GenericPromoError,
		}, nil
	}

	var promo model.PromoCode
	err := s.db.WithContext(ctx).
		Where("code = ?", normalized).
		First(&promo).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &PromoValidationResult{
				IsValid:      false,
				FinalPrice:   basePrice,
				ErrorMessage: GenericPromoError,
			}, nil
		}
		return nil, fmt.Errorf("failed to look up promo code: %w", err)
	}

	if !promo.IsActive || promo.IsExpired(time.Now()) || promo.IsExhausted() {
		return &PromoValidationResult{
			IsValid:      false,
			FinalPrice:   basePrice,
			ErrorMessage: GenericPromoError,
		}, nil
	}

	return &PromoValidationResult{
		IsValid:       true,
		Code:          promo.Code,
		DiscountType:  promo.DiscountType,
		DiscountValue: promo.DiscountValue,
		FinalPrice:    DiscountedPrice(basePrice, promo.DiscountType, promo.DiscountValue),
	}, nil
}

// DiscountedPrice applies a discount to a base price. The result is clamped to
// zero so an over-sized fixed discount can never produce a negative amount.
func DiscountedPrice(basePrice int, discountType string, discountValue int) int {
	var final int
	switch discountType {
	case model.DiscountTypePercentage:
		if discountValue > 100 {
			discountValue = 100
		}
		// Round the discount to the nearest rupee
		final = basePrice - (basePrice*discountValue+50)/100
	case model.DiscountTypeFixed:
		final = basePrice - discountValue
	default:
		final = basePrice
	}

	if final < 0 {
		final = 0
	}
	return final
}

// Redeem consumes one use of a promo code inside the caller's transaction.
// The conditional UPDATE is the concurrency guard: two admins approving
// verifications with the last remaining use of a code race on it, and the
// loser gets ErrPromoExhausted.
func (s *PromoService) Redeem(tx *gorm.DB, code string) error {
	normalized := validation.NormalizePromoCode(code)

	var promo model.PromoCode
	if err := tx.Where("code = ?", normalized).First(&promo).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up promo code: %w", err)
	}

	if !promo.IsActive || promo.IsExpired(time.Now()) {
		return ErrPromoExhausted
	}

	result := tx.Model(&model.PromoCode{}).
		Where("id = ? AND (max_uses IS NULL OR current_uses < max_uses)", promo.ID).
		UpdateColumn("current_uses", gorm.Expr("current_uses + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("failed to redeem promo code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPromoExhausted
	}

	return nil
}
