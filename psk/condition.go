package psk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/ilp-labs/sender-lib/common/types"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const (
	// SharedSecretSize is the required length of a pre-shared secret.
	SharedSecretSize = 32
	// ConditionSize is the length of an execution condition digest.
	ConditionSize = 32
	// FulfillmentSize is the length of a fulfillment preimage.
	FulfillmentSize = 32
)

// Key derivation labels. Condition and encryption keys must never coincide.
const (
	conditionKeyInfo  = "ilp_psk_condition"
	encryptionKeyInfo = "ilp_psk_encryption"
)

// Condition is a preimage-sha-256 hash commitment. A transfer locked on a
// condition is released by the 32-byte preimage hashing to it.
type Condition [ConditionSize]byte

// String renders the condition in crypto-conditions URI form.
func (c Condition) String() string {
	return fmt.Sprintf("cc:0:3:%s:%d", base64.RawURLEncoding.EncodeToString(c[:]), FulfillmentSize)
}

// ParseCondition parses a condition URI produced by Condition.String.
//
// Parameters:
// - uri: the condition URI to parse.
//
// Returns:
// - Condition: the parsed condition digest.
// - error: ErrInvalidArgument if the URI is malformed.
func ParseCondition(uri string) (Condition, error) {
	var cond Condition

	parts := strings.Split(uri, ":")
	if len(parts) != 5 || parts[0] != "cc" || parts[1] != "0" || parts[2] != "3" {
		return cond, errors.Wrapf(lperrors.ErrInvalidArgument, "malformed condition uri %q", uri)
	}

	digest, err := base64.RawURLEncoding.DecodeString(parts[3])
	if err != nil {
		return cond, errors.Wrapf(lperrors.ErrInvalidArgument, "malformed condition digest: %v", err)
	}
	if len(digest) != ConditionSize {
		return cond, errors.Wrapf(lperrors.ErrInvalidArgument, "condition digest must be %d bytes, got %d", ConditionSize, len(digest))
	}

	cost, err := strconv.Atoi(parts[4])
	if err != nil || cost != FulfillmentSize {
		return cond, errors.Wrapf(lperrors.ErrInvalidArgument, "unexpected condition cost %q", parts[4])
	}

	copy(cond[:], digest)
	return cond, nil
}

// RequestFields are the request fields bound into a condition. Any change to
// any field produces a different condition.
type RequestFields struct {
	DestinationAccount string
	DestinationAmount  string
	ExpiresAt          time.Time
	Data               []byte
}

// canonicalBytes serializes the fields into a stable byte form. Each field is
// length-prefixed so field boundaries stay unambiguous.
func (f RequestFields) canonicalBytes() []byte {
	fields := [][]byte{
		[]byte(f.DestinationAccount),
		[]byte(f.DestinationAmount),
		[]byte(f.ExpiresAt.UTC().Format(time.RFC3339Nano)),
		f.Data,
	}

	var buf []byte
	for _, field := range fields {
		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(field)))
		buf = append(buf, length[:]...)
		buf = append(buf, field...)
	}
	return buf
}

// deriveKey expands the shared secret into a purpose-bound 32-byte key.
func deriveKey(sharedSecret []byte, info string) ([]byte, error) {
	if len(sharedSecret) != SharedSecretSize {
		return nil, errors.Wrapf(lperrors.ErrInvalidKey, "shared secret must be %d bytes, got %d", SharedSecretSize, len(sharedSecret))
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, sharedSecret, nil, []byte(info)), key); err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}
	return key, nil
}

// DeriveFulfillment computes the fulfillment preimage for a request. The
// result is a pure function of the shared secret and the canonical fields;
// the receiving side recomputes the same preimage to release the transfer.
//
// Parameters:
// - fields: the assembled request fields.
// - sharedSecret: the 32-byte pre-shared secret.
//
// Returns:
// - types.Fulfillment: the 32-byte preimage.
// - error: ErrInvalidKey if the shared secret is malformed.
func DeriveFulfillment(fields RequestFields, sharedSecret []byte) (types.Fulfillment, error) {
	key, err := deriveKey(sharedSecret, conditionKeyInfo)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(fields.canonicalBytes())
	return mac.Sum(nil), nil
}

// DeriveCondition computes the execution condition for a request: the
// SHA-256 hash of the fulfillment preimage derived from the same inputs.
//
// Parameters:
// - fields: the assembled request fields.
// - sharedSecret: the 32-byte pre-shared secret.
//
// Returns:
// - Condition: the condition digest.
// - error: ErrInvalidKey if the shared secret is malformed.
func DeriveCondition(fields RequestFields, sharedSecret []byte) (Condition, error) {
	fulfillment, err := DeriveFulfillment(fields, sharedSecret)
	if err != nil {
		return Condition{}, err
	}
	return sha256.Sum256(fulfillment), nil
}

// VerifyFulfillment reports whether the preimage hashes to the condition.
// Malformed condition URIs never verify.
func VerifyFulfillment(fulfillment types.Fulfillment, conditionURI string) bool {
	cond, err := ParseCondition(conditionURI)
	if err != nil {
		return false
	}

	sum := sha256.Sum256(fulfillment)
	return hmac.Equal(sum[:], cond[:])
}
