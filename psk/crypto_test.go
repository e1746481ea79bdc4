package psk

import (
	"testing"

	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte(`{"invoice":"INV-42","note":"coffee"}`)

	blob, err := EncryptData(plaintext, testSecret())
	require.NoError(t, err)
	assert.NotContains(t, string(blob), "INV-42")

	decrypted, err := DecryptData(blob, testSecret())
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecryptTamperedBlob(t *testing.T) {
	blob, err := EncryptData([]byte("metadata"), testSecret())
	require.NoError(t, err)

	blob[len(blob)-1] ^= 0x01
	_, err = DecryptData(blob, testSecret())
	assert.True(t, errors.Is(err, lperrors.ErrAuthentication))
}

func TestDecryptWrongSecret(t *testing.T) {
	blob, err := EncryptData([]byte("metadata"), testSecret())
	require.NoError(t, err)

	otherSecret := testSecret()
	otherSecret[31] ^= 0xff
	_, err = DecryptData(blob, otherSecret)
	assert.True(t, errors.Is(err, lperrors.ErrAuthentication))
}

func TestDecryptTruncatedBlob(t *testing.T) {
	_, err := DecryptData([]byte{0x01, 0x02}, testSecret())
	assert.True(t, errors.Is(err, lperrors.ErrAuthentication))
}

func TestEncryptInvalidSecret(t *testing.T) {
	_, err := EncryptData([]byte("metadata"), []byte("too short"))
	assert.True(t, errors.Is(err, lperrors.ErrInvalidKey))
}
