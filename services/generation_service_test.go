package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/naeemsabir/sopcraft-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator is a canned TextGenerator for tests
type fakeGenerator struct {
	content string
	err     error
	calls   int
}

func (f *fakeGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func newGenerationService(t *testing.T, generator *fakeGenerator) (*GenerationService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	sops := NewSOPService(db, nil)
	return NewGenerationService(db, sops, generator), mock
}

func TestGenerateFirstDraft(t *testing.T) {
	generator := &fakeGenerator{content: "Dear Visa Officer, ..."}
	svc, mock := newGenerationService(t, generator)

	sopID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM "sops"`).
		WillReturnRows(sopRows(model.SOP{
			ID:            sopID,
			UserID:        7,
			Country:       "UK",
			University:    "University of Manchester",
			Course:        "Data Science",
			DegreeLevel:   "Masters",
			Status:        model.SOPStatusProcessing,
			PaymentStatus: model.PaymentStatusUnpaid,
		}))
	// No sensitive details on file; the draft proceeds with placeholders
	mock.ExpectQuery(`SELECT (.+) FROM "sop_sensitive_details"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`UPDATE "sops" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sop, err := svc.Generate(context.Background(), 7, sopID)
	require.NoError(t, err)
	assert.Equal(t, 1, generator.calls)
	assert.Equal(t, model.SOPStatusReady, sop.Status)
	require.NotNil(t, sop.GeneratedContent)
	assert.Equal(t, "Dear Visa Officer, ...", *sop.GeneratedContent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateRegenerationRequiresPayment(t *testing.T) {
	generator := &fakeGenerator{content: "second draft"}
	svc, mock := newGenerationService(t, generator)

	existing := "first draft"
	sopID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM "sops"`).
		WillReturnRows(sopRows(model.SOP{
			ID:               sopID,
			UserID:           7,
			GeneratedContent: &existing,
			Status:           model.SOPStatusReady,
			PaymentStatus:    model.PaymentStatusUnpaid,
		}))

	_, err := svc.Generate(context.Background(), 7, sopID)

	ve, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "payment", ve.Field)
	// The gateway is never reached
	assert.Equal(t, 0, generator.calls)
}

func TestGenerateRegenerationAllowedAfterPayment(t *testing.T) {
	generator := &fakeGenerator{content: "improved draft"}
	svc, mock := newGenerationService(t, generator)

	existing := "first draft"
	sopID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM "sops"`).
		WillReturnRows(sopRows(model.SOP{
			ID:               sopID,
			UserID:           7,
			GeneratedContent: &existing,
			Status:           model.SOPStatusReady,
			PaymentStatus:    model.PaymentStatusPaid,
			IsLocked:         true,
		}))
	mock.ExpectQuery(`SELECT (.+) FROM "sop_sensitive_details"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`UPDATE "sops" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sop, err := svc.Generate(context.Background(), 7, sopID)
	require.NoError(t, err)
	assert.Equal(t, "improved draft", *sop.GeneratedContent)
}

func TestGenerateGatewayFailureLeavesContentUntouched(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("upstream timeout")}
	svc, mock := newGenerationService(t, generator)

	sopID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM "sops"`).
		WillReturnRows(sopRows(model.SOP{
			ID:            sopID,
			UserID:        7,
			Status:        model.SOPStatusProcessing,
			PaymentStatus: model.PaymentStatusUnpaid,
		}))
	mock.ExpectQuery(`SELECT (.+) FROM "sop_sensitive_details"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Generate(context.Background(), 7, sopID)
	assert.ErrorIs(t, err, ErrExternalService)
	// No UPDATE was issued; the stored record is untouched
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateEmptyGatewayResponseIsAFailure(t *testing.T) {
	generator := &fakeGenerator{content: "   \n  "}
	svc, mock := newGenerationService(t, generator)

	sopID := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM "sops"`).
		WillReturnRows(sopRows(model.SOP{
			ID:            sopID,
			UserID:        7,
			Status:        model.SOPStatusProcessing,
			PaymentStatus: model.PaymentStatusUnpaid,
		}))
	mock.ExpectQuery(`SELECT (.+) FROM "sop_sensitive_details"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Generate(context.Background(), 7, sopID)
	assert.ErrorIs(t, err, ErrExternalService)
}

func TestPreviewTruncatesUnpaidContent(t *testing.T) {
	content := strings.Repeat("a", PreviewLength+200)
	sop := &model.SOP{
		GeneratedContent: &content,
		PaymentStatus:    model.PaymentStatusUnpaid,
	}

	preview := Preview(sop)
	require.NotNil(t, preview)
	assert.True(t, strings.HasPrefix(*preview, strings.Repeat("a", PreviewLength)))
	assert.Contains(t, *preview, "[Unlock the full SOP by completing your payment]")
	assert.NotEqual(t, content, *preview)
}

func TestPreviewShortUnpaidContentIsComplete(t *testing.T) {
	content := "short draft"
	sop := &model.SOP{
		GeneratedContent: &content,
		PaymentStatus:    model.PaymentStatusUnpaid,
	}

	preview := Preview(sop)
	require.NotNil(t, preview)
	assert.Equal(t, content, *preview)
}

func TestPreviewPaidContentIsFull(t *testing.T) {
	content := strings.Repeat("b", PreviewLength*3)
	sop := &model.SOP{
		GeneratedContent: &content,
		PaymentStatus:    model.PaymentStatusPaid,
		IsLocked:         true,
	}

	preview := Preview(sop)
	require.NotNil(t, preview)
	assert.Equal(t, content, *preview)
}

func TestPreviewNilContent(t *testing.T) {
	sop := &model.SOP{PaymentStatus: model.PaymentStatusUnpaid}
	assert.Nil(t, Preview(sop))
}

func TestEnglishLevelFromIELTS(t *testing.T) {
	assert.Contains(t, englishLevel("7.5"), "C1")
	assert.Contains(t, englishLevel("IELTS 8.0"), "C1")
	assert.Contains(t, englishLevel("6.0"), "B2")
	assert.Contains(t, englishLevel(""), "B2")
}

func TestSponsorPhrase(t *testing.T) {
	assert.Equal(t, "personal savings", sponsorPhrase("Self"))
	assert.Equal(t, "father", sponsorPhrase("Father"))
	assert.Equal(t, "education loan", sponsorPhrase("Loan"))
	assert.Equal(t, "family", sponsorPhrase(""))
	assert.Equal(t, "uncle", sponsorPhrase("Uncle"))
}
