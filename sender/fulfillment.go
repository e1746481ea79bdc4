package sender

import (
	"context"
	"time"

	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/ilp-labs/sender-lib/common/types"
	"github.com/ilp-labs/sender-lib/psk"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// awaitFulfillment obtains the fulfillment proof for a submitted transfer.
// Two acquisition paths race: an immediate poll for an already-recorded
// fulfillment, then a one-shot listener keyed by execution condition raced
// against the expiry deadline. The listener and the timer are released on
// every exit path.
func (s *Sender) awaitFulfillment(
	ctx context.Context,
	transferID string,
	executionCondition string,
	expiresAt time.Time,
) (types.Fulfillment, error) {
	// Poll path: a prior attempt may have completed the transfer before this
	// call. Not-found is not an error here, it means fall through to listening.
	fulfillment, err := s.pollFulfillment(ctx, transferID, executionCondition)
	if err != nil {
		return nil, err
	}
	if fulfillment != nil {
		s.logger.WithField("transferId", transferID).Info("Transfer already fulfilled")
		return fulfillment, nil
	}

	// Listen path.
	fulfillmentChan, cancel := s.hub.Register(executionCondition)
	defer cancel()

	// The fulfillment may have landed between the first poll and the
	// registration; check once more now that the listener is in place.
	fulfillment, err = s.pollFulfillment(ctx, transferID, executionCondition)
	if err != nil {
		return nil, err
	}
	if fulfillment != nil {
		return fulfillment, nil
	}

	timer := time.NewTimer(time.Until(expiresAt))
	defer timer.Stop()

	select {
	case fulfillment := <-fulfillmentChan:
		s.logger.WithFields(logrus.Fields{
			"transferId":  transferID,
			"fulfillment": fulfillment.String(),
		}).Info("Transfer fulfilled")
		return fulfillment, nil

	case <-timer.C:
		s.logger.WithFields(logrus.Fields{
			"transferId": transferID,
			"expiresAt":  expiresAt,
		}).Warn("Transfer expired before fulfillment")
		return nil, errors.Wrapf(lperrors.ErrExpiredTransfer, "transfer %s", transferID)

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// pollFulfillment asks the ledger for an already-recorded fulfillment.
// Returns nil without error when none is recorded yet.
func (s *Sender) pollFulfillment(ctx context.Context, transferID, executionCondition string) (types.Fulfillment, error) {
	fulfillment, err := s.ledger.GetFulfillment(ctx, transferID)
	if err != nil {
		if errors.Is(err, lperrors.ErrFulfillmentNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if !psk.VerifyFulfillment(fulfillment, executionCondition) {
		return nil, errors.Wrapf(lperrors.ErrAuthentication, "recorded fulfillment for transfer %s does not match its condition", transferID)
	}
	return fulfillment, nil
}
