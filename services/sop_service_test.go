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

func sopRows(sop model.SOP) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "country", "university", "course", "degree_level",
		"generated_content", "status", "payment_status", "is_locked", "package_tier",
	}).AddRow(
		sop.ID, sop.UserID, sop.Country, sop.University, sop.Course, sop.DegreeLevel,
		sop.GeneratedContent, sop.Status, sop.PaymentStatus, sop.IsLocked, sop.PackageTier,
	)
}

func TestGetByIDScopesToOwner(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSOPService(db, nil)

	sopID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM "sops"`).
		WithArgs(sopID, uint(7), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.GetByID(context.Background(), 7, sopID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTargetFieldsOnUnlockedSOP(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSOPService(db, nil)

	sopID := uuid.New()
	country := "Canada"

	mock.ExpectExec(`UPDATE "sops" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "sops"`).
		WillReturnRows(sopRows(model.SOP{
			ID:            sopID,
			UserID:        7,
			Country:       "Canada",
			Status:        model.SOPStatusProcessing,
			PaymentStatus: model.PaymentStatusUnpaid,
		}))

	sop, err := svc.UpdateTargetFields(context.Background(), 7, sopID, TargetUpdate{Country: &country})
	require.NoError(t, err)
	assert.Equal(t, "Canada", sop.Country)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTargetFieldsRejectedWhenLocked(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSOPService(db, nil)

	sopID := uuid.New()
	country := "Australia"

	// The guarded UPDATE matches nothing; the follow-up fetch finds the row,
	// so the miss was the lock
	mock.ExpectExec(`UPDATE "sops" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "sops"`).
		WillReturnRows(sopRows(model.SOP{
			ID:            sopID,
			UserID:        7,
			Country:       "UK",
			Status:        model.SOPStatusReady,
			PaymentStatus: model.PaymentStatusPaid,
			IsLocked:      true,
		}))

	_, err := svc.UpdateTargetFields(context.Background(), 7, sopID, TargetUpdate{Country: &country})
	assert.ErrorIs(t, err, ErrLockedField)
}

func TestUpdateTargetFieldsMissingSOP(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSOPService(db, nil)

	sopID := uuid.New()
	country := "Germany"

	mock.ExpectExec(`UPDATE "sops" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM "sops"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.UpdateTargetFields(context.Background(), 7, sopID, TargetUpdate{Country: &country})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyPaymentLocksAndMarksPremium(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSOPService(db, nil)

	sopID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM "sops"`).
		WillReturnRows(sopRows(model.SOP{
			ID:            sopID,
			UserID:        7,
			PaymentStatus: model.PaymentStatusUnpaid,
		}))
	// paid, locked and tier move in one statement
	mock.ExpectExec(`UPDATE "sops" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET "is_premium"=`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.ApplyPayment(db, sopID, model.PackageTierExpert)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPaymentIsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSOPService(db, nil)

	sopID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM "sops"`).
		WillReturnRows(sopRows(model.SOP{
			ID:            sopID,
			UserID:        7,
			PaymentStatus: model.PaymentStatusPaid,
			IsLocked:      true,
		}))
	// Guard excludes already-paid rows; no user update follows
	mock.ExpectExec(`UPDATE "sops" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.ApplyPayment(db, sopID, model.PackageTierStandard)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPaymentMissingSOP(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSOPService(db, nil)

	mock.ExpectQuery(`SELECT (.+) FROM "sops"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := svc.ApplyPayment(db, uuid.New(), model.PackageTierStandard)
	assert.ErrorIs(t, err, ErrNotFound)
}
