package types

// QuoteParams represents a rate lookup request sent to the connector network.
// Exactly one of SourceAmount or DestinationAmount must be set.
type QuoteParams struct {
	DestinationAddress string
	SourceAmount       string
	DestinationAmount  string
}

// Quote represents a connector exchange-rate quote.
//
// Fields:
// - SourceAmount: the amount the sender would be debited, as a decimal string.
// - DestinationAmount: the amount the receiver would be credited, as a decimal string.
// - ConnectorAccount: the account of the connector that produced the quote.
type Quote struct {
	SourceAmount      string
	DestinationAmount string
	ConnectorAccount  string
}
