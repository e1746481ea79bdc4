package sender

import (
	"time"

	"github.com/google/uuid"
	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/ilp-labs/sender-lib/common/types"
	"github.com/ilp-labs/sender-lib/psk"
	"github.com/pkg/errors"
)

// RequestOptions holds the optional parts of a payment request.
//
// Fields:
// - ID: the request discriminator; a random identifier is generated when empty.
// - ExpiresAt: the request expiry; defaults to now plus the configured request timeout.
// - Data: plaintext metadata, encrypted under the shared secret before embedding.
type RequestOptions struct {
	ID        string
	ExpiresAt time.Time
	Data      []byte
}

// CreateRequest assembles a payment request for the given destination and
// derives its execution condition from the shared secret. The discriminator
// appended to the address keeps repeated requests for the same logical
// payment individually addressable with distinct conditions.
//
// No network interaction: pure computation plus one draw of randomness when
// the caller supplies no id.
//
// Parameters:
// - destinationAccount: the receiver's ILP address without discriminator.
// - destinationAmount: the amount to request, as a decimal string.
// - sharedSecret: the 32-byte pre-shared secret.
// - opts: the optional request parts; nil selects all defaults.
//
// Returns:
// - *types.PaymentRequest: the assembled request.
// - error: ErrInvalidArgument or ErrInvalidKey on malformed input.
func (s *Sender) CreateRequest(
	destinationAccount string,
	destinationAmount string,
	sharedSecret []byte,
	opts *RequestOptions,
) (*types.PaymentRequest, error) {
	if destinationAccount == "" {
		return nil, errors.Wrap(lperrors.ErrInvalidArgument, "destination account is required")
	}
	if err := validateAmount("destination amount", destinationAmount); err != nil {
		return nil, err
	}

	options := RequestOptions{}
	if opts != nil {
		options = *opts
	}

	id := options.ID
	if id == "" {
		id = uuid.NewString()
	}
	address := destinationAccount + "." + id

	expiresAt := options.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(s.config.DefaultRequestTimeout)
	}

	var blob []byte
	if options.Data != nil {
		encrypted, err := psk.EncryptData(options.Data, sharedSecret)
		if err != nil {
			return nil, err
		}
		blob = encrypted
	}

	// The condition is computed last, over the fully assembled fields.
	condition, err := psk.DeriveCondition(psk.RequestFields{
		DestinationAccount: address,
		DestinationAmount:  destinationAmount,
		ExpiresAt:          expiresAt,
		Data:               blob,
	}, sharedSecret)
	if err != nil {
		return nil, err
	}

	return &types.PaymentRequest{
		DestinationAccount: address,
		DestinationAmount:  destinationAmount,
		ExpiresAt:          expiresAt,
		ExecutionCondition: condition.String(),
		Data:               blob,
	}, nil
}
