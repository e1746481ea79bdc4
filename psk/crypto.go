package psk

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/pkg/errors"
)

// EncryptData seals request metadata with AES-256-GCM under a key derived
// from the shared secret. Output layout: nonce || ciphertext || tag.
//
// Parameters:
// - plaintext: the metadata to encrypt.
// - sharedSecret: the 32-byte pre-shared secret.
//
// Returns:
// - []byte: the sealed blob.
// - error: ErrInvalidKey if the shared secret is malformed.
func EncryptData(plaintext, sharedSecret []byte) ([]byte, error) {
	gcm, err := newGCM(sharedSecret)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "failed to generate nonce")
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptData opens a blob produced by EncryptData. It fails closed: any
// tampering or a wrong secret yields ErrAuthentication and no plaintext.
//
// Parameters:
// - blob: the sealed blob.
// - sharedSecret: the 32-byte pre-shared secret.
//
// Returns:
// - []byte: the decrypted metadata.
// - error: ErrInvalidKey for a malformed secret, ErrAuthentication otherwise.
func DecryptData(blob, sharedSecret []byte) ([]byte, error) {
	gcm, err := newGCM(sharedSecret)
	if err != nil {
		return nil, err
	}

	if len(blob) < gcm.NonceSize() {
		return nil, errors.Wrap(lperrors.ErrAuthentication, "blob shorter than nonce")
	}

	plaintext, err := gcm.Open(nil, blob[:gcm.NonceSize()], blob[gcm.NonceSize():], nil)
	if err != nil {
		return nil, errors.Wrap(lperrors.ErrAuthentication, err.Error())
	}
	return plaintext, nil
}

// newGCM builds the AEAD for the encryption key derived from the secret.
func newGCM(sharedSecret []byte) (cipher.AEAD, error) {
	key, err := deriveKey(sharedSecret, encryptionKeyInfo)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCM")
	}
	return gcm, nil
}
