package types

import (
	"time"
)

// PaymentRequest represents a quoted-then-paid payment request built by the
// sender from a shared secret.
//
// Fields:
// - DestinationAccount: the ILP address of the receiver, with a per-request discriminator appended.
// - DestinationAmount: the amount the receiver should be credited, as a decimal string.
// - ExpiresAt: the time after which the request must not be paid.
// - ExecutionCondition: the hash commitment releasing the transfer, in condition URI form.
// - Data: the encrypted request metadata blob, empty when the caller supplied none.
type PaymentRequest struct {
	DestinationAccount string
	DestinationAmount  string
	ExpiresAt          time.Time
	ExecutionCondition string
	Data               []byte
}

// PaymentParams merges a connector quote with the original payment request.
// It carries everything needed to submit the source-side transfer.
//
// Fields:
// - SourceAmount: the amount debited from the sender, as a decimal string.
// - DestinationAmount: the amount credited to the receiver, as a decimal string.
// - DestinationAccount: the receiver address from the original request.
// - ConnectorAccount: the account of the connector that produced the quote.
// - ExpiresAt: the transfer expiry, already clamped to the maximum hold duration.
// - ExecutionCondition: the condition URI from the original request.
// - Data: the encrypted metadata blob passed through from the request.
type PaymentParams struct {
	SourceAmount       string
	DestinationAmount  string
	DestinationAccount string
	ConnectorAccount   string
	ExpiresAt          time.Time
	ExecutionCondition string
	Data               []byte
}
