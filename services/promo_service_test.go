package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/naeemsabir/sopcraft-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountedPriceFixed(t *testing.T) {
	assert.Equal(t, 700, DiscountedPrice(1000, model.DiscountTypeFixed, 300))
	assert.Equal(t, 4800, DiscountedPrice(5000, model.DiscountTypeFixed, 200))
}

func TestDiscountedPricePercentage(t *testing.T) {
	assert.Equal(t, 850, DiscountedPrice(1000, model.DiscountTypePercentage, 15))
	assert.Equal(t, 500, DiscountedPrice(1000, model.DiscountTypePercentage, 50))
	assert.Equal(t, 2500, DiscountedPrice(5000, model.DiscountTypePercentage, 50))
}

func TestDiscountedPriceNeverNegative(t *testing.T) {
	// A fixed discount larger than the price clamps to zero
	assert.Equal(t, 0, DiscountedPrice(1000, model.DiscountTypeFixed, 1500))
}

func TestDiscountedPricePercentageCappedAt100(t *testing.T) {
	assert.Equal(t, 0, DiscountedPrice(1000, model.DiscountTypePercentage, 150))
}

func TestDiscountedPriceUnknownTypeIsNoop(t *testing.T) {
	assert.Equal(t, 1000, DiscountedPrice(1000, "bogus", 50))
}

func promoRows(promo model.PromoCode) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "code", "discount_type", "discount_value",
		"max_uses", "current_uses", "expires_at", "is_active",
	}).AddRow(
		promo.ID, promo.Code, promo.DiscountType, promo.DiscountValue,
		promo.MaxUses, promo.CurrentUses, promo.ExpiresAt, promo.IsActive,
	)
}

func TestValidateUnknownCodeReturnsGenericError(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPromoService(db)

	mock.ExpectQuery(`SELECT (.+) FROM "promo_codes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	result, err := svc.Validate(context.Background(), "NOPE", 1000)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, 1000, result.FinalPrice)
	assert.Equal(t, GenericPromoError, result.ErrorMessage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateExpiredCodeReturnsGenericError(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPromoService(db)

	expired := time.Now().Add(-24 * time.Hour)
	mock.ExpectQuery(`SELECT (.+) FROM "promo_codes"`).
		WillReturnRows(promoRows(model.PromoCode{
			ID:            uuid.New(),
			Code:          "LAUNCH50",
			DiscountType:  model.DiscountTypePercentage,
			DiscountValue: 50,
			ExpiresAt:     &expired,
			IsActive:      true,
		}))

	result, err := svc.Validate(context.Background(), "LAUNCH50", 1000)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	// The caller can never tell an expired code from a missing one
	assert.Equal(t, GenericPromoError, result.ErrorMessage)
}

func TestValidateExhaustedCodeReturnsGenericError(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPromoService(db)

	maxUses := 100
	mock.ExpectQuery(`SELECT (.+) FROM "promo_codes"`).
		WillReturnRows(promoRows(model.PromoCode{
			ID:            uuid.New(),
			Code:          "LAUNCH50",
			DiscountType:  model.DiscountTypePercentage,
			DiscountValue: 50,
			MaxUses:       &maxUses,
			CurrentUses:   100,
			IsActive:      true,
		}))

	result, err := svc.Validate(context.Background(), "LAUNCH50", 1000)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, GenericPromoError, result.ErrorMessage)
}

func TestValidateActiveCodeComputesFinalPrice(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPromoService(db)

	// Codes are normalized to uppercase before lookup
	mock.ExpectQuery(`SELECT (.+) FROM "promo_codes"`).
		WithArgs("STUDENT200", 1).
		WillReturnRows(promoRows(model.PromoCode{
			ID:            uuid.New(),
			Code:          "STUDENT200",
			DiscountType:  model.DiscountTypeFixed,
			DiscountValue: 200,
			IsActive:      true,
		}))

	result, err := svc.Validate(context.Background(), "  Student200 ", 1000)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, "STUDENT200", result.Code)
	assert.Equal(t, 800, result.FinalPrice)
	assert.Empty(t, result.ErrorMessage)
}

func TestRedeemIncrementsGuardedCounter(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPromoService(db)

	maxUses := 100
	promoID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM "promo_codes"`).
		WillReturnRows(promoRows(model.PromoCode{
			ID:            promoID,
			Code:          "LAUNCH50",
			DiscountType:  model.DiscountTypePercentage,
			DiscountValue: 50,
			MaxUses:       &maxUses,
			CurrentUses:   99,
			IsActive:      true,
		}))
	mock.ExpectExec(`UPDATE "promo_codes" SET "current_uses"=current_uses`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Redeem(db, "LAUNCH50")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemLosesRaceOnLastUse(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPromoService(db)

	// The loaded row still shows one use left, but the guarded UPDATE
	// matches nothing because a concurrent approval took it
	maxUses := 100
	mock.ExpectQuery(`SELECT (.+) FROM "promo_codes"`).
		WillReturnRows(promoRows(model.PromoCode{
			ID:            uuid.New(),
			Code:          "LAUNCH50",
			DiscountType:  model.DiscountTypePercentage,
			DiscountValue: 50,
			MaxUses:       &maxUses,
			CurrentUses:   99,
			IsActive:      true,
		}))
	mock.ExpectExec(`UPDATE "promo_codes" SET "current_uses"=current_uses`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Redeem(db, "LAUNCH50")
	assert.ErrorIs(t, err, ErrPromoExhausted)
}

func TestRedeemInactiveCode(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPromoService(db)

	mock.ExpectQuery(`SELECT (.+) FROM "promo_codes"`).
		WillReturnRows(promoRows(model.PromoCode{
			ID:            uuid.New(),
			Code:          "LAUNCH50",
			DiscountType:  model.DiscountTypePercentage,
			DiscountValue: 50,
			IsActive:      false,
		}))

	err := svc.Redeem(db, "LAUNCH50")
	assert.ErrorIs(t, err, ErrPromoExhausted)
}

func TestRedeemMissingCode(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewPromoService(db)

	mock.ExpectQuery(`SELECT (.+) FROM "promo_codes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := svc.Redeem(db, "GHOST")
	assert.ErrorIs(t, err, ErrNotFound)
}
