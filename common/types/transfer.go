package types

import (
	"encoding/base64"
	"time"
)

// Transfer represents a conditional ledger transfer submitted by the sender.
//
// Fields:
// - ID: the deterministic 128-bit transfer identifier in RFC-4122 form.
// - Amount: the source amount to hold, as a decimal string.
// - DestinationAccount: the receiver address the connector should deliver to.
// - ConnectorAccount: the local account of the connector carrying the transfer.
// - ExecutionCondition: the condition URI that must be fulfilled to release the hold.
// - ExpiresAt: the time at which the ledger returns the held funds.
// - Data: the opaque memo forwarded to the receiver.
type Transfer struct {
	ID                 string
	Amount             string
	DestinationAccount string
	ConnectorAccount   string
	ExecutionCondition string
	ExpiresAt          time.Time
	Data               []byte
}

// Fulfillment is the preimage whose SHA-256 hash reproduces an execution
// condition, serving as cryptographic proof of payment completion.
type Fulfillment []byte

// String renders the fulfillment in base64url form.
func (f Fulfillment) String() string {
	return base64.RawURLEncoding.EncodeToString(f)
}
