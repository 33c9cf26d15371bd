package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/naeemsabir/sopcraft-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerificationService(t *testing.T) (*VerificationService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	promos := NewPromoService(db)
	sops := NewSOPService(db, nil)
	pricing := Pricing{Standard: 1000, Expert: 5000}
	return NewVerificationService(db, promos, sops, pricing), mock
}

func verificationRows(v model.PaymentVerification) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "sop_id", "payment_method", "sender_name",
		"transaction_id", "amount", "package_tier", "promo_code", "status",
	}).AddRow(
		v.ID, v.UserID, v.SOPID, v.PaymentMethod, v.SenderName,
		v.TransactionID, v.Amount, v.PackageTier, v.PromoCode, v.Status,
	)
}

func TestSubmitRejectsMalformedTransactionID(t *testing.T) {
	svc, _ := newVerificationService(t)

	_, err := svc.Submit(context.Background(), 7, SubmitRequest{
		PaymentMethod: model.PaymentMethodJazzCash,
		SenderName:    "Ali Khan",
		TransactionID: "no!", // too short, bad characters
		PackageTier:   model.PackageTierStandard,
	})

	ve, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "transaction_id", ve.Field)
}

func TestSubmitRejectsBlankSenderName(t *testing.T) {
	svc, _ := newVerificationService(t)

	_, err := svc.Submit(context.Background(), 7, SubmitRequest{
		PaymentMethod: model.PaymentMethodEasypaisa,
		SenderName:    "   ",
		TransactionID: "TX123456789",
		PackageTier:   model.PackageTierStandard,
	})

	ve, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "sender_name", ve.Field)
}

func TestSubmitRejectsUnknownTier(t *testing.T) {
	svc, _ := newVerificationService(t)

	_, err := svc.Submit(context.Background(), 7, SubmitRequest{
		PaymentMethod: model.PaymentMethodHBL,
		SenderName:    "Ali Khan",
		TransactionID: "TX123456789",
		PackageTier:   "platinum",
	})

	ve, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "package_tier", ve.Field)
}

func TestSubmitRejectsInvalidPromoCode(t *testing.T) {
	svc, mock := newVerificationService(t)

	mock.ExpectQuery(`SELECT (.+) FROM "promo_codes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Submit(context.Background(), 7, SubmitRequest{
		PaymentMethod: model.PaymentMethodJazzCash,
		SenderName:    "Ali Khan",
		TransactionID: "TX123456789",
		PackageTier:   model.PackageTierStandard,
		PromoCode:     "GHOST",
	})

	ve, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "promo_code", ve.Field)
	assert.Equal(t, GenericPromoError, ve.Message)
}

func TestApproveWithoutLinkedSOP(t *testing.T) {
	svc, mock := newVerificationService(t)

	verificationID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_verifications"`).
		WillReturnRows(verificationRows(model.PaymentVerification{
			ID:            verificationID,
			UserID:        7,
			PaymentMethod: model.PaymentMethodJazzCash,
			SenderName:    "Ali Khan",
			TransactionID: "TX123456789",
			Amount:        1000,
			Status:        model.VerificationStatusPending,
		}))
	mock.ExpectExec(`UPDATE "payment_verifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	verification, err := svc.Approve(context.Background(), verificationID, "confirmed via bank portal")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationStatusApproved, verification.Status)
	require.NotNil(t, verification.AdminNotes)
	assert.Equal(t, "confirmed via bank portal", *verification.AdminNotes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveAlreadyProcessed(t *testing.T) {
	svc, mock := newVerificationService(t)

	verificationID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_verifications"`).
		WillReturnRows(verificationRows(model.PaymentVerification{
			ID:     verificationID,
			UserID: 7,
			Status: model.VerificationStatusApproved,
		}))
	// The second admin's conditional UPDATE hits nothing
	mock.ExpectExec(`UPDATE "payment_verifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), verificationID, "")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveAppliesPaymentAndRedeemsPromo(t *testing.T) {
	svc, mock := newVerificationService(t)

	verificationID := uuid.New()
	sopID := uuid.New()
	tier := model.PackageTierExpert
	code := "LAUNCH50"
	maxUses := 100

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_verifications"`).
		WillReturnRows(verificationRows(model.PaymentVerification{
			ID:            verificationID,
			UserID:        7,
			SOPID:         &sopID,
			PaymentMethod: model.PaymentMethodEasypaisa,
			SenderName:    "Ali Khan",
			TransactionID: "TX123456789",
			Amount:        2500,
			PackageTier:   &tier,
			PromoCode:     &code,
			Status:        model.VerificationStatusPending,
		}))
	mock.ExpectExec(`UPDATE "payment_verifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// ApplyPayment on the linked SOP
	mock.ExpectQuery(`SELECT (.+) FROM "sops"`).
		WillReturnRows(sopRows(model.SOP{
			ID:            sopID,
			UserID:        7,
			PaymentStatus: model.PaymentStatusUnpaid,
		}))
	mock.ExpectExec(`UPDATE "sops" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET "is_premium"=`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Redeem the recorded promo
	mock.ExpectQuery(`SELECT (.+) FROM "promo_codes"`).
		WillReturnRows(promoRows(model.PromoCode{
			ID:            uuid.New(),
			Code:          code,
			DiscountType:  model.DiscountTypePercentage,
			DiscountValue: 50,
			MaxUses:       &maxUses,
			CurrentUses:   10,
			IsActive:      true,
		}))
	mock.ExpectExec(`UPDATE "promo_codes" SET "current_uses"=current_uses`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	verification, err := svc.Approve(context.Background(), verificationID, "")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationStatusApproved, verification.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveRollsBackWhenPromoExhausted(t *testing.T) {
	svc, mock := newVerificationService(t)

	verificationID := uuid.New()
	code := "LAUNCH50"
	maxUses := 100

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_verifications"`).
		WillReturnRows(verificationRows(model.PaymentVerification{
			ID:            verificationID,
			UserID:        7,
			PromoCode:     &code,
			Status:        model.VerificationStatusPending,
			PaymentMethod: model.PaymentMethodJazzCash,
			SenderName:    "Ali Khan",
			TransactionID: "TX123456789",
			Amount:        500,
		}))
	mock.ExpectExec(`UPDATE "payment_verifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "promo_codes"`).
		WillReturnRows(promoRows(model.PromoCode{
			ID:            uuid.New(),
			Code:          code,
			DiscountType:  model.DiscountTypePercentage,
			DiscountValue: 50,
			MaxUses:       &maxUses,
			CurrentUses:   100,
			IsActive:      true,
		}))
	mock.ExpectExec(`UPDATE "promo_codes" SET "current_uses"=current_uses`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// The whole approval unwinds: the status flip never lands either
	mock.ExpectRollback()

	_, err := svc.Approve(context.Background(), verificationID, "")
	assert.ErrorIs(t, err, ErrPromoExhausted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectRequiresNotes(t *testing.T) {
	svc, _ := newVerificationService(t)

	_, err := svc.Reject(context.Background(), uuid.New(), "   ")

	ve, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "admin_notes", ve.Field)
}

func TestRejectPendingVerification(t *testing.T) {
	svc, mock := newVerificationService(t)

	verificationID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_verifications"`).
		WillReturnRows(verificationRows(model.PaymentVerification{
			ID:            verificationID,
			UserID:        7,
			PaymentMethod: model.PaymentMethodHBL,
			SenderName:    "Ali Khan",
			TransactionID: "TX123456789",
			Amount:        1000,
			Status:        model.VerificationStatusPending,
		}))
	mock.ExpectExec(`UPDATE "payment_verifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	verification, err := svc.Reject(context.Background(), verificationID, "TID not found in bank statement")
	require.NoError(t, err)
	assert.Equal(t, model.VerificationStatusRejected, verification.Status)
	require.NotNil(t, verification.AdminNotes)
	assert.Equal(t, "TID not found in bank statement", *verification.AdminNotes)
}

func TestRejectAlreadyProcessed(t *testing.T) {
	svc, mock := newVerificationService(t)

	verificationID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_verifications"`).
		WillReturnRows(verificationRows(model.PaymentVerification{
			ID:     verificationID,
			UserID: 7,
			Status: model.VerificationStatusApproved,
		}))
	mock.ExpectExec(`UPDATE "payment_verifications" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Reject(context.Background(), verificationID, "late rejection attempt")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestBasePriceByTier(t *testing.T) {
	pricing := Pricing{Standard: 1000, Expert: 5000}

	standard, err := pricing.BasePrice(model.PackageTierStandard)
	require.NoError(t, err)
	assert.Equal(t, 1000, standard)

	expert, err := pricing.BasePrice(model.PackageTierExpert)
	require.NoError(t, err)
	assert.Equal(t, 5000, expert)

	_, err = pricing.BasePrice("deluxe")
	_, ok := IsValidationError(err)
	assert.True(t, ok)
}
