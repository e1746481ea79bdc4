package mock

import (
	"bytes"
	"context"
	"sync"
	"time"

	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/ilp-labs/sender-lib/common/types"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// LedgerClient implements types.LedgerClient in memory for tests and demos.
// Quotes are computed from a fixed source-per-destination rate; transfers and
// fulfillments are recorded so tests can assert on ledger-visible effects.
type LedgerClient struct {
	mu sync.Mutex

	connected    bool
	connectCount int

	rate             decimal.Decimal
	connectorAccount string
	quoteEmpty       bool
	quoteErr         error
	submitErr        error

	transfers    map[string]*types.Transfer
	fulfillments map[string]types.Fulfillment
	subscribers  []chan<- types.FulfillmentEvent
}

// New creates a mock ledger client with a 1:1 exchange rate.
func New() *LedgerClient {
	return &LedgerClient{
		rate:             decimal.NewFromInt(1),
		connectorAccount: "mock.connector",
		transfers:        make(map[string]*types.Transfer),
		fulfillments:     make(map[string]types.Fulfillment),
	}
}

// Connect marks the client connected.
func (m *LedgerClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	m.connectCount++
	return nil
}

// Disconnect marks the client disconnected and drops subscribers.
func (m *LedgerClient) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.subscribers = nil
	return nil
}

// CheckConnection reports an error while disconnected.
func (m *LedgerClient) CheckConnection(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return lperrors.ErrNotConnected
	}
	return nil
}

// Reconnect re-establishes the mock connection.
func (m *LedgerClient) Reconnect(ctx context.Context) error {
	return m.Connect(ctx)
}

// Quote computes a quote from the configured rate, or returns the configured
// override behavior.
func (m *LedgerClient) Quote(ctx context.Context, params *types.QuoteParams) (*types.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quoteErr != nil {
		return nil, m.quoteErr
	}
	if m.quoteEmpty {
		return nil, nil
	}

	quote := &types.Quote{ConnectorAccount: m.connectorAccount}

	switch {
	case params.DestinationAmount != "":
		destination, err := decimal.NewFromString(params.DestinationAmount)
		if err != nil {
			return nil, errors.Wrap(err, "bad destination amount")
		}
		quote.DestinationAmount = params.DestinationAmount
		quote.SourceAmount = destination.Mul(m.rate).String()

	case params.SourceAmount != "":
		source, err := decimal.NewFromString(params.SourceAmount)
		if err != nil {
			return nil, errors.Wrap(err, "bad source amount")
		}
		quote.SourceAmount = params.SourceAmount
		quote.DestinationAmount = source.DivRound(m.rate, 12).String()

	default:
		return nil, errors.New("quote params carry no amount")
	}

	return quote, nil
}

// SubmitTransfer records the transfer. Resubmitting an id with identical
// parameters yields ErrDuplicateTransfer; the same id with different
// parameters yields ErrDuplicateTransferParams.
func (m *LedgerClient) SubmitTransfer(ctx context.Context, transfer *types.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitErr != nil {
		return m.submitErr
	}

	if existing, ok := m.transfers[transfer.ID]; ok {
		if sameTransferParams(existing, transfer) {
			return lperrors.ErrDuplicateTransfer
		}
		return lperrors.ErrDuplicateTransferParams
	}

	clone := *transfer
	m.transfers[transfer.ID] = &clone
	return nil
}

// GetFulfillment returns the recorded fulfillment for a transfer.
func (m *LedgerClient) GetFulfillment(ctx context.Context, transferID string) (types.Fulfillment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fulfillment, ok := m.fulfillments[transferID]
	if !ok {
		return nil, errors.Wrapf(lperrors.ErrFulfillmentNotFound, "transfer %s", transferID)
	}
	return fulfillment, nil
}

// SubscribeFulfillments registers an event channel.
func (m *LedgerClient) SubscribeFulfillments(ctx context.Context, eventChan chan<- types.FulfillmentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, eventChan)
	return nil
}

// SimulateFulfillment records a fulfillment for a submitted transfer and
// emits the matching notification to all subscribers.
func (m *LedgerClient) SimulateFulfillment(transferID string, fulfillment types.Fulfillment) {
	m.mu.Lock()
	transfer, ok := m.transfers[transferID]
	if ok {
		m.fulfillments[transferID] = fulfillment
	}
	subscribers := append([]chan<- types.FulfillmentEvent(nil), m.subscribers...)
	m.mu.Unlock()

	if !ok {
		return
	}

	clone := *transfer
	event := types.FulfillmentEvent{
		Transfer:    &clone,
		Fulfillment: fulfillment,
		ReceivedAt:  time.Now(),
	}
	for _, subscriber := range subscribers {
		subscriber <- event
	}
}

// RecordFulfillment stores a fulfillment without emitting a notification,
// modeling a transfer completed before the current call.
func (m *LedgerClient) RecordFulfillment(transferID string, fulfillment types.Fulfillment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fulfillments[transferID] = fulfillment
}

// SetRate sets the source-per-destination exchange rate used for quotes.
func (m *LedgerClient) SetRate(rate decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = rate
}

// SetConnectorAccount sets the connector account reported in quotes.
func (m *LedgerClient) SetConnectorAccount(account string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectorAccount = account
}

// ReturnEmptyQuote makes Quote return nothing usable.
func (m *LedgerClient) ReturnEmptyQuote(empty bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quoteEmpty = empty
}

// FailQuotes makes Quote fail with the given error.
func (m *LedgerClient) FailQuotes(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quoteErr = err
}

// FailSubmits makes SubmitTransfer fail with the given error.
func (m *LedgerClient) FailSubmits(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitErr = err
}

// SubmittedTransfers returns the number of ledger-visible transfers.
func (m *LedgerClient) SubmittedTransfers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transfers)
}

// Transfer returns a copy of the recorded transfer with the given id.
func (m *LedgerClient) Transfer(transferID string) *types.Transfer {
	m.mu.Lock()
	defer m.mu.Unlock()

	transfer, ok := m.transfers[transferID]
	if !ok {
		return nil
	}
	clone := *transfer
	return &clone
}

// ConnectCount returns how many times Connect was called.
func (m *LedgerClient) ConnectCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectCount
}

func sameTransferParams(a, b *types.Transfer) bool {
	return a.Amount == b.Amount &&
		a.DestinationAccount == b.DestinationAccount &&
		a.ConnectorAccount == b.ConnectorAccount &&
		a.ExecutionCondition == b.ExecutionCondition &&
		a.ExpiresAt.Equal(b.ExpiresAt) &&
		bytes.Equal(a.Data, b.Data)
}
