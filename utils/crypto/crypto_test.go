package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cipher, err := NewFieldCipher("test-secret-at-least-not-empty")
	require.NoError(t, err)

	plaintext := "House 12, Street 4, Lahore"
	sealed, err := cipher.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, sealed)
	assert.Equal(t, 3, len(strings.Split(sealed, ".")))

	opened, err := cipher.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestEncryptProducesUniqueEnvelopes(t *testing.T) {
	cipher, err := NewFieldCipher("test-secret-at-least-not-empty")
	require.NoError(t, err)

	// Fresh salt and nonce per value: identical plaintexts never repeat on disk
	first, err := cipher.Encrypt("0322 4684181")
	require.NoError(t, err)
	second, err := cipher.Encrypt("0322 4684181")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	cipher, err := NewFieldCipher("test-secret-at-least-not-empty")
	require.NoError(t, err)

	sealed, err := cipher.Encrypt("sensitive value")
	require.NoError(t, err)

	parts := strings.Split(sealed, ".")
	parts[2] = parts[2][:len(parts[2])-2] + "AA"
	_, err = cipher.Decrypt(strings.Join(parts, "."))
	assert.Error(t, err)
}

func TestDecryptRejectsMalformedEnvelope(t *testing.T) {
	cipher, err := NewFieldCipher("test-secret-at-least-not-empty")
	require.NoError(t, err)

	_, err = cipher.Decrypt("not-an-envelope")
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestDecryptWrongSecret(t *testing.T) {
	cipher, err := NewFieldCipher("secret-one")
	require.NoError(t, err)
	other, err := NewFieldCipher("secret-two")
	require.NoError(t, err)

	sealed, err := cipher.Encrypt("value")
	require.NoError(t, err)

	_, err = other.Decrypt(sealed)
	assert.Error(t, err)
}

func TestEmptyStringRoundTrip(t *testing.T) {
	cipher, err := NewFieldCipher("test-secret-at-least-not-empty")
	require.NoError(t, err)

	sealed, err := cipher.Encrypt("")
	require.NoError(t, err)
	opened, err := cipher.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "", opened)
}
