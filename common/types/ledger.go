package types

import (
	"context"
)

// Connection manages the lifecycle of the link to the ledger.
type Connection interface {
	// Connect establishes the connection to the ledger.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	//
	// Returns:
	// - error: an error if the connection cannot be established.
	Connect(ctx context.Context) error

	// Disconnect releases the connection to the ledger.
	//
	// Returns:
	// - error: an error if the disconnect fails.
	Disconnect() error

	// CheckConnection checks if the connection is alive.
	CheckConnection(ctx context.Context) error

	// Reconnect re-establishes a dropped connection.
	Reconnect(ctx context.Context) error
}

// Quoter provides exchange-rate quoting through the connector network.
type Quoter interface {
	// Quote asks the connector network for a source/destination amount quote.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - params: the rate lookup parameters with exactly one amount set.
	//
	// Returns:
	// - *Quote: the quote, or nil when the network returned nothing usable.
	// - error: an error if the lookup fails; ErrNoRoute when no connector can reach the destination.
	Quote(ctx context.Context, params *QuoteParams) (*Quote, error)
}

// TransferSubmitter provides conditional transfer submission.
type TransferSubmitter interface {
	// SubmitTransfer submits a conditional transfer to the ledger.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - transfer: the transfer to submit.
	//
	// Returns:
	// - error: ErrDuplicateTransfer if the id was already submitted with the
	//   same parameters, ErrDuplicateTransferParams if it was submitted with
	//   different parameters, or any other submission failure.
	SubmitTransfer(ctx context.Context, transfer *Transfer) error
}

// FulfillmentReader provides lookup of already-recorded fulfillments.
type FulfillmentReader interface {
	// GetFulfillment returns the recorded fulfillment for a transfer.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - transferID: the transfer identifier to look up.
	//
	// Returns:
	// - Fulfillment: the recorded proof.
	// - error: ErrFulfillmentNotFound when the transfer has not been fulfilled yet.
	GetFulfillment(ctx context.Context, transferID string) (Fulfillment, error)
}

// FulfillmentSubscriber provides the "transfer fulfilled" notification stream.
type FulfillmentSubscriber interface {
	// SubscribeFulfillments registers a channel to receive fulfillment events.
	// The channel is shared process-wide and stays registered until the
	// connection is released.
	//
	// Parameters:
	// - ctx: the context for managing the subscription lifecycle.
	// - eventChan: the channel to receive fulfillment events.
	//
	// Returns:
	// - error: an error if the subscription cannot be established.
	SubscribeFulfillments(ctx context.Context, eventChan chan<- FulfillmentEvent) error
}

// LedgerClient combines all ledger-facing functionality consumed by the sender.
type LedgerClient interface {
	Connection
	Quoter
	TransferSubmitter
	FulfillmentReader
	FulfillmentSubscriber
}
