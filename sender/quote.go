package sender

import (
	"context"
	"time"

	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/ilp-labs/sender-lib/common/types"
	"github.com/ilp-labs/sender-lib/psk"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// QuoteSourceAmount asks the connector network how much would arrive at the
// destination for a fixed source amount.
//
// Parameters:
// - ctx: the context for managing the request.
// - destinationAddress: the receiver's ILP address.
// - sourceAmount: the amount to send, as a decimal string.
//
// Returns:
// - string: the destination amount, as a decimal string.
// - error: ErrInvalidArgument on malformed input, ErrEmptyQuote when the
//   network returned nothing usable, or any ledger failure unchanged.
func (s *Sender) QuoteSourceAmount(ctx context.Context, destinationAddress, sourceAmount string) (string, error) {
	if destinationAddress == "" {
		return "", errors.Wrap(lperrors.ErrInvalidArgument, "destination address is required")
	}
	if err := validateAmount("source amount", sourceAmount); err != nil {
		return "", err
	}

	quote, err := s.quote(ctx, &types.QuoteParams{
		DestinationAddress: destinationAddress,
		SourceAmount:       sourceAmount,
	})
	if err != nil {
		return "", err
	}

	return quote.DestinationAmount, nil
}

// QuoteDestinationAmount asks the connector network how much must be sent
// for a fixed destination amount.
//
// Parameters:
// - ctx: the context for managing the request.
// - destinationAddress: the receiver's ILP address.
// - destinationAmount: the amount to deliver, as a decimal string.
//
// Returns:
// - string: the source amount, as a decimal string.
// - error: ErrInvalidArgument on malformed input, ErrEmptyQuote when the
//   network returned nothing usable, or any ledger failure unchanged.
func (s *Sender) QuoteDestinationAmount(ctx context.Context, destinationAddress, destinationAmount string) (string, error) {
	if destinationAddress == "" {
		return "", errors.Wrap(lperrors.ErrInvalidArgument, "destination address is required")
	}
	if err := validateAmount("destination amount", destinationAmount); err != nil {
		return "", err
	}

	quote, err := s.quote(ctx, &types.QuoteParams{
		DestinationAddress: destinationAddress,
		DestinationAmount:  destinationAmount,
	})
	if err != nil {
		return "", err
	}

	return quote.SourceAmount, nil
}

// QuoteRequest quotes a payment request and merges the result into payment
// parameters ready for PayRequest. The transfer expiry is clamped so it
// never exceeds now plus the configured maximum hold duration.
//
// Parameters:
// - ctx: the context for managing the request.
// - request: the payment request to quote.
//
// Returns:
// - *types.PaymentParams: the merged payment parameters.
// - error: ErrInvalidArgument on malformed input, ErrEmptyQuote when the
//   network returned nothing usable, or any ledger failure unchanged.
func (s *Sender) QuoteRequest(ctx context.Context, request *types.PaymentRequest) (*types.PaymentParams, error) {
	if request == nil {
		return nil, errors.Wrap(lperrors.ErrInvalidArgument, "payment request is required")
	}
	if request.DestinationAccount == "" {
		return nil, errors.Wrap(lperrors.ErrInvalidArgument, "destination account is required")
	}
	if err := validateAmount("destination amount", request.DestinationAmount); err != nil {
		return nil, err
	}
	if _, err := psk.ParseCondition(request.ExecutionCondition); err != nil {
		return nil, err
	}

	quote, err := s.quote(ctx, &types.QuoteParams{
		DestinationAddress: request.DestinationAccount,
		DestinationAmount:  request.DestinationAmount,
	})
	if err != nil {
		return nil, err
	}

	return &types.PaymentParams{
		SourceAmount:       quote.SourceAmount,
		DestinationAmount:  request.DestinationAmount,
		DestinationAccount: request.DestinationAccount,
		ConnectorAccount:   quote.ConnectorAccount,
		ExpiresAt:          s.clampExpiry(request.ExpiresAt),
		ExecutionCondition: request.ExecutionCondition,
		Data:               request.Data,
	}, nil
}

// quote delegates the rate lookup to the ledger client and normalizes the
// response. A nil quote or one missing the looked-up amount means the
// connector network returned nothing usable.
func (s *Sender) quote(ctx context.Context, params *types.QuoteParams) (*types.Quote, error) {
	if err := s.ensureConnected(ctx); err != nil {
		return nil, err
	}

	quote, err := s.ledger.Quote(ctx, params)
	if err != nil {
		return nil, err
	}

	if quote == nil || quote.SourceAmount == "" || quote.DestinationAmount == "" {
		return nil, errors.Wrapf(lperrors.ErrEmptyQuote, "destination %s", params.DestinationAddress)
	}

	s.logger.WithFields(logrus.Fields{
		"destination":       params.DestinationAddress,
		"sourceAmount":      quote.SourceAmount,
		"destinationAmount": quote.DestinationAmount,
		"connector":         quote.ConnectorAccount,
	}).Debug("Received quote")

	return quote, nil
}

// clampExpiry bounds a requested expiry by the configured maximum hold
// duration, protecting the sender from indefinitely locked funds.
func (s *Sender) clampExpiry(requested time.Time) time.Time {
	maxExpiry := time.Now().Add(s.config.MaxHoldDuration)
	if requested.IsZero() || requested.After(maxExpiry) {
		return maxExpiry
	}
	return requested
}

// validateAmount rejects missing, non-decimal, or non-positive amounts.
// Amounts stay decimal strings end-to-end; decimal parsing is used for
// validation only, never binary floating point.
func validateAmount(name, value string) error {
	if value == "" {
		return errors.Wrapf(lperrors.ErrInvalidArgument, "%s is required", name)
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return errors.Wrapf(lperrors.ErrInvalidArgument, "%s %q is not a decimal amount", name, value)
	}
	if !amount.IsPositive() {
		return errors.Wrapf(lperrors.ErrInvalidArgument, "%s must be positive, got %s", name, value)
	}
	return nil
}
