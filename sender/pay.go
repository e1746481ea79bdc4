package sender

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"

	"github.com/google/uuid"
	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/ilp-labs/sender-lib/common/types"
	"github.com/ilp-labs/sender-lib/psk"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// TransferID derives the deterministic transfer identifier for an execution
// condition: the first 128 bits of HMAC-SHA256(seed, condition digest),
// formatted as an RFC-4122 UUID. Same seed and condition always yield the
// same id, which is what makes resubmission idempotent; the keyed hash keeps
// outside parties from precomputing ids to squat on.
//
// Parameters:
// - seed: the per-sender 32-byte secret.
// - executionCondition: the condition URI of the transfer.
//
// Returns:
// - string: the transfer identifier in UUID form.
// - error: ErrInvalidArgument if the condition URI is malformed.
func TransferID(seed []byte, executionCondition string) (string, error) {
	condition, err := psk.ParseCondition(executionCondition)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, seed)
	mac.Write(condition[:])
	digest := mac.Sum(nil)

	// Stamp version 4 and the RFC-4122 variant so the id is a well-formed UUID.
	digest[6] = (digest[6] & 0x0f) | 0x40
	digest[8] = (digest[8] & 0x3f) | 0x80

	id, err := uuid.FromBytes(digest[:16])
	if err != nil {
		return "", errors.Wrap(err, "failed to build transfer id")
	}
	return id.String(), nil
}

// PayRequest submits the transfer described by the payment parameters and
// waits for cryptographic proof that it was fulfilled.
//
// Submission is safe to retry: the transfer id is a pure function of the
// sender seed and the execution condition, and a duplicate-id signal from
// the ledger is treated as an already-submitted transfer rather than an
// error. A duplicate id carrying different parameters is fatal.
//
// Parameters:
// - ctx: the context for managing the request.
// - params: the quoted payment parameters.
//
// Returns:
// - types.Fulfillment: the fulfillment proof.
// - error: ErrInvalidArgument on malformed input, ErrExpiredTransfer when
//   the deadline elapses without fulfillment, or any other ledger failure
//   unchanged.
func (s *Sender) PayRequest(ctx context.Context, params *types.PaymentParams) (types.Fulfillment, error) {
	if params == nil {
		return nil, errors.Wrap(lperrors.ErrInvalidArgument, "payment params are required")
	}
	if err := validateAmount("source amount", params.SourceAmount); err != nil {
		return nil, err
	}
	if params.DestinationAccount == "" {
		return nil, errors.Wrap(lperrors.ErrInvalidArgument, "destination account is required")
	}
	if params.ExpiresAt.IsZero() {
		return nil, errors.Wrap(lperrors.ErrInvalidArgument, "expiry is required")
	}

	transferID, err := TransferID(s.config.Seed, params.ExecutionCondition)
	if err != nil {
		return nil, err
	}

	if err := s.ensureConnected(ctx); err != nil {
		return nil, err
	}

	transfer := &types.Transfer{
		ID:                 transferID,
		Amount:             params.SourceAmount,
		DestinationAccount: params.DestinationAccount,
		ConnectorAccount:   params.ConnectorAccount,
		ExecutionCondition: params.ExecutionCondition,
		ExpiresAt:          params.ExpiresAt,
		Data:               params.Data,
	}

	err = s.ledger.SubmitTransfer(ctx, transfer)
	switch {
	case err == nil:
		s.logger.WithFields(logrus.Fields{
			"transferId": transferID,
			"amount":     params.SourceAmount,
		}).Info("Transfer submitted")

	case errors.Is(err, lperrors.ErrDuplicateTransfer):
		// Idempotent retry: the hold already exists, wait on it.
		s.logger.WithField("transferId", transferID).Debug("Transfer already submitted, reusing existing hold")

	default:
		return nil, err
	}

	return s.awaitFulfillment(ctx, transferID, params.ExecutionCondition, params.ExpiresAt)
}
