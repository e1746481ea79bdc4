package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/ilp-labs/sender-lib/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// handshakeTimeout bounds the websocket dial.
	handshakeTimeout = 10 * time.Second
	// pingTimeout bounds the CheckConnection round trip.
	pingTimeout = 5 * time.Second
)

// Client implements types.LedgerClient over a websocket JSON protocol.
// Requests are correlated by id; fulfillment notifications are fanned out to
// all subscribed channels by the read loop.
type Client struct {
	config *types.LedgerConfig
	logger *logrus.Logger

	connMutex sync.RWMutex
	conn      *websocket.Conn

	writeMutex sync.Mutex
	nextID     atomic.Int64

	pendingMutex sync.Mutex
	pending      map[int64]chan *envelope

	subsMutex   sync.Mutex
	subscribers []chan<- types.FulfillmentEvent
}

// NewClient creates a new websocket ledger client instance.
//
// Parameters:
// - config: the ledger endpoint configuration.
// - logger: the logger for logging purposes.
//
// Returns:
// - types.LedgerClient: the new client instance.
// - error: an error if the configuration is incomplete.
func NewClient(config *types.LedgerConfig, logger *logrus.Logger) (types.LedgerClient, error) {
	if config == nil || config.URL == "" {
		return nil, errors.Wrap(lperrors.ErrInvalidArgument, "ledger url is required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Client{
		config:  config,
		logger:  logger,
		pending: make(map[int64]chan *envelope),
	}, nil
}

// Connect dials the ledger endpoint and starts the read loop.
//
// Parameters:
// - ctx: the context for managing the dial.
//
// Returns:
// - error: an error if the dial or handshake fails.
func (c *Client) Connect(ctx context.Context) error {
	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if c.conn != nil {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	header := http.Header{}
	if c.config.AuthToken != "" {
		header.Set("Authorization", "Bearer "+c.config.AuthToken)
	}

	conn, _, err := dialer.DialContext(ctx, c.config.URL, header)
	if err != nil {
		return errors.Wrapf(err, "failed to dial ledger %s", c.config.Name)
	}

	c.conn = conn
	go c.readLoop(conn)

	c.logger.WithFields(logrus.Fields{
		"ledger": c.config.Name,
		"url":    c.config.URL,
	}).Info("Ledger websocket connected")

	return nil
}

// Disconnect closes the websocket and fails all pending calls.
func (c *Client) Disconnect() error {
	c.connMutex.Lock()
	conn := c.conn
	c.conn = nil
	c.connMutex.Unlock()

	if conn == nil {
		return nil
	}

	c.failPending(lperrors.ErrNotConnected)
	return conn.Close()
}

// CheckConnection verifies the link with a ping round trip.
func (c *Client) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	_, err := c.call(ctx, methodPing, nil)
	return err
}

// Reconnect drops the current connection and dials again.
func (c *Client) Reconnect(ctx context.Context) error {
	if err := c.Disconnect(); err != nil {
		c.logger.WithError(err).Warn("Failed to close stale ledger connection")
	}
	return c.Connect(ctx)
}

// Quote delegates a rate lookup to the ledger.
func (c *Client) Quote(ctx context.Context, params *types.QuoteParams) (*types.Quote, error) {
	result, err := c.call(ctx, methodQuote, wireQuoteParams{
		DestinationAddress: params.DestinationAddress,
		SourceAmount:       params.SourceAmount,
		DestinationAmount:  params.DestinationAmount,
	})
	if err != nil {
		return nil, err
	}

	if len(result) == 0 || string(result) == "null" {
		return nil, nil
	}

	var quote wireQuote
	if err := json.Unmarshal(result, &quote); err != nil {
		return nil, errors.Wrap(err, "failed to decode quote")
	}

	return &types.Quote{
		SourceAmount:      quote.SourceAmount,
		DestinationAmount: quote.DestinationAmount,
		ConnectorAccount:  quote.ConnectorAccount,
	}, nil
}

// SubmitTransfer submits a conditional transfer.
func (c *Client) SubmitTransfer(ctx context.Context, transfer *types.Transfer) error {
	_, err := c.call(ctx, methodSubmitTransfer, toWireTransfer(transfer))
	return err
}

// GetFulfillment looks up the recorded fulfillment for a transfer.
func (c *Client) GetFulfillment(ctx context.Context, transferID string) (types.Fulfillment, error) {
	result, err := c.call(ctx, methodGetFulfillment, map[string]string{"transfer_id": transferID})
	if err != nil {
		return nil, err
	}

	var fulfillment wireFulfillmentResult
	if err := json.Unmarshal(result, &fulfillment); err != nil {
		return nil, errors.Wrap(err, "failed to decode fulfillment")
	}
	return fulfillment.Fulfillment, nil
}

// SubscribeFulfillments registers an event channel fed by the read loop.
func (c *Client) SubscribeFulfillments(ctx context.Context, eventChan chan<- types.FulfillmentEvent) error {
	c.subsMutex.Lock()
	defer c.subsMutex.Unlock()
	c.subscribers = append(c.subscribers, eventChan)
	return nil
}

// call performs one request/response round trip.
func (c *Client) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	c.connMutex.RLock()
	conn := c.conn
	c.connMutex.RUnlock()

	if conn == nil {
		return nil, lperrors.ErrNotConnected
	}

	request := envelope{
		ID:     c.nextID.Add(1),
		Method: method,
	}
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode params")
		}
		request.Params = encoded
	}

	responseChan := make(chan *envelope, 1)
	c.pendingMutex.Lock()
	c.pending[request.ID] = responseChan
	c.pendingMutex.Unlock()

	defer func() {
		c.pendingMutex.Lock()
		delete(c.pending, request.ID)
		c.pendingMutex.Unlock()
	}()

	c.writeMutex.Lock()
	err := conn.WriteJSON(request)
	c.writeMutex.Unlock()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send %s request", method)
	}

	select {
	case response := <-responseChan:
		if response == nil {
			return nil, lperrors.ErrNotConnected
		}
		if response.Error != nil {
			return nil, classifyError(response.Error)
		}
		return response.Result, nil

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// readLoop decodes frames until the connection drops, routing responses to
// pending calls and notifications to subscribers.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var frame envelope
		if err := conn.ReadJSON(&frame); err != nil {
			c.logger.WithFields(logrus.Fields{
				"ledger": c.config.Name,
				"error":  err,
			}).Warn("Ledger websocket read loop stopped")
			c.failPending(errors.Wrap(err, "connection lost"))
			return
		}

		if frame.Method == methodFulfillment {
			c.handleNotification(frame.Params)
			continue
		}

		c.pendingMutex.Lock()
		responseChan := c.pending[frame.ID]
		c.pendingMutex.Unlock()

		if responseChan == nil {
			c.logger.WithField("id", frame.ID).Debug("Dropping response with no pending call")
			continue
		}
		responseChan <- &frame
	}
}

// handleNotification decodes a fulfillment notification and fans it out.
func (c *Client) handleNotification(params json.RawMessage) {
	var event wireFulfillmentEvent
	if err := json.Unmarshal(params, &event); err != nil {
		c.logger.WithError(err).Warn("Dropping malformed fulfillment notification")
		return
	}

	notification := types.FulfillmentEvent{
		Transfer:    fromWireTransfer(event.Transfer),
		Fulfillment: event.Fulfillment,
		ReceivedAt:  time.Now(),
	}

	c.subsMutex.Lock()
	subscribers := append([]chan<- types.FulfillmentEvent(nil), c.subscribers...)
	c.subsMutex.Unlock()

	for _, subscriber := range subscribers {
		subscriber <- notification
	}
}

// failPending resolves every pending call with a nil frame so callers fail
// fast instead of waiting out their contexts.
func (c *Client) failPending(err error) {
	c.pendingMutex.Lock()
	defer c.pendingMutex.Unlock()

	for id, responseChan := range c.pending {
		select {
		case responseChan <- nil:
		default:
		}
		delete(c.pending, id)
	}

	if err != nil {
		c.logger.WithError(err).Debug("Failed pending ledger calls")
	}
}
