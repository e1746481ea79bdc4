package sender

import (
	"context"
	"testing"
	"time"

	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/ilp-labs/sender-lib/common/types"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteSourceAmount(t *testing.T) {
	s, ledger := newTestSender(t, nil)
	ledger.SetRate(decimal.NewFromInt(2))

	destinationAmount, err := s.QuoteSourceAmount(context.Background(), "example.ledger.alice", "100")
	require.NoError(t, err)
	assert.Equal(t, "50", destinationAmount)
}

func TestQuoteDestinationAmount(t *testing.T) {
	s, ledger := newTestSender(t, nil)
	ledger.SetRate(decimal.NewFromInt(2))

	sourceAmount, err := s.QuoteDestinationAmount(context.Background(), "example.ledger.alice", "100")
	require.NoError(t, err)
	assert.Equal(t, "200", sourceAmount)
}

func TestQuoteValidation(t *testing.T) {
	s, _ := newTestSender(t, nil)
	ctx := context.Background()

	_, err := s.QuoteSourceAmount(ctx, "", "100")
	assert.True(t, errors.Is(err, lperrors.ErrInvalidArgument))

	_, err = s.QuoteSourceAmount(ctx, "example.ledger.alice", "")
	assert.True(t, errors.Is(err, lperrors.ErrInvalidArgument))

	_, err = s.QuoteDestinationAmount(ctx, "example.ledger.alice", "1e")
	assert.True(t, errors.Is(err, lperrors.ErrInvalidArgument))

	_, err = s.QuoteDestinationAmount(ctx, "example.ledger.alice", "0")
	assert.True(t, errors.Is(err, lperrors.ErrInvalidArgument))

	_, err = s.QuoteRequest(ctx, nil)
	assert.True(t, errors.Is(err, lperrors.ErrInvalidArgument))

	_, err = s.QuoteRequest(ctx, &types.PaymentRequest{
		DestinationAccount: "example.ledger.alice.1",
		DestinationAmount:  "100",
		ExecutionCondition: "garbage",
	})
	assert.True(t, errors.Is(err, lperrors.ErrInvalidArgument))
}

func TestQuoteEmptyResponse(t *testing.T) {
	s, ledger := newTestSender(t, nil)
	ledger.ReturnEmptyQuote(true)

	_, err := s.QuoteSourceAmount(context.Background(), "example.ledger.alice", "100")
	assert.True(t, errors.Is(err, lperrors.ErrEmptyQuote))
}

func TestQuoteLedgerFailurePropagatesUnchanged(t *testing.T) {
	s, ledger := newTestSender(t, nil)
	ledger.FailQuotes(lperrors.ErrNoRoute)

	_, err := s.QuoteSourceAmount(context.Background(), "example.ledger.alice", "100")
	assert.True(t, errors.Is(err, lperrors.ErrNoRoute))
}

func TestQuoteRequestClampsExpiry(t *testing.T) {
	s, _ := newTestSender(t, &types.SenderConfig{MaxHoldDuration: 10 * time.Second})

	request, err := s.CreateRequest("example.ledger.alice", "100", testSecret(), &RequestOptions{
		ExpiresAt: time.Now().Add(time.Minute),
	})
	require.NoError(t, err)

	params, err := s.QuoteRequest(context.Background(), request)
	require.NoError(t, err)

	// The stated expiry exceeds the maximum hold duration and must be clamped.
	assert.WithinDuration(t, time.Now().Add(10*time.Second), params.ExpiresAt, time.Second)
}

func TestQuoteRequestKeepsEarlierExpiry(t *testing.T) {
	s, _ := newTestSender(t, &types.SenderConfig{MaxHoldDuration: time.Minute})

	expiresAt := time.Now().Add(5 * time.Second)
	request, err := s.CreateRequest("example.ledger.alice", "100", testSecret(), &RequestOptions{
		ExpiresAt: expiresAt,
	})
	require.NoError(t, err)

	params, err := s.QuoteRequest(context.Background(), request)
	require.NoError(t, err)
	assert.True(t, params.ExpiresAt.Equal(expiresAt))
}

func TestQuoteRequestMergesQuoteAndRequest(t *testing.T) {
	s, ledger := newTestSender(t, nil)
	ledger.SetRate(decimal.NewFromInt(3))
	ledger.SetConnectorAccount("example.ledger.connie")

	request, err := s.CreateRequest("example.ledger.alice", "100", testSecret(), &RequestOptions{
		Data: []byte(`{"memo":"hi"}`),
	})
	require.NoError(t, err)

	params, err := s.QuoteRequest(context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, "300", params.SourceAmount)
	assert.Equal(t, "100", params.DestinationAmount)
	assert.Equal(t, request.DestinationAccount, params.DestinationAccount)
	assert.Equal(t, "example.ledger.connie", params.ConnectorAccount)
	assert.Equal(t, request.ExecutionCondition, params.ExecutionCondition)
	assert.Equal(t, request.Data, params.Data)
}
