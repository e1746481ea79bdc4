package types

import (
	"time"
)

// FulfillmentEvent represents a "transfer fulfilled" notification from the
// ledger, carrying the executed transfer together with its proof.
type FulfillmentEvent struct {
	Transfer    *Transfer
	Fulfillment Fulfillment
	ReceivedAt  time.Time
}
