package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTransactionID(t *testing.T) {
	ok, _ := ValidateTransactionID("TX123456789")
	assert.True(t, ok)

	ok, _ = ValidateTransactionID("0000123456-789")
	assert.True(t, ok)

	// Surrounding whitespace is tolerated
	ok, _ = ValidateTransactionID("  8558TX99  ")
	assert.True(t, ok)

	ok, msg := ValidateTransactionID("TX1")
	assert.False(t, ok)
	assert.Contains(t, msg, "at least 6")

	ok, msg = ValidateTransactionID(strings.Repeat("9", 26))
	assert.False(t, ok)
	assert.Contains(t, msg, "at most 25")

	ok, msg = ValidateTransactionID("TX_12345!")
	assert.False(t, ok)
	assert.Contains(t, msg, "letters, numbers, and hyphens")
}

func TestNormalizePromoCode(t *testing.T) {
	assert.Equal(t, "LAUNCH50", NormalizePromoCode("  launch50 "))
	assert.Equal(t, "STUDENT200", NormalizePromoCode("Student200"))
	assert.Equal(t, "", NormalizePromoCode("   "))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("applicant@example.com"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail(""))
}
