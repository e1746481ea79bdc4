package ws

import (
	"encoding/json"
	"time"

	"github.com/ilp-labs/sender-lib/common/types"
)

// Wire methods understood by the ledger endpoint.
const (
	methodPing           = "ping"
	methodQuote          = "quote"
	methodSubmitTransfer = "submit_transfer"
	methodGetFulfillment = "get_fulfillment"
	methodFulfillment    = "fulfillment"
)

// envelope is the single JSON frame exchanged with the ledger. Requests set
// ID and Method; responses echo the ID with Result or Error; notifications
// carry Method and Params without an ID.
type envelope struct {
	ID     int64           `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *wireError      `json:"error,omitempty"`
}

// wireError is the ledger's error shape, classified by code.
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type wireQuoteParams struct {
	DestinationAddress string `json:"destination_address"`
	SourceAmount       string `json:"source_amount,omitempty"`
	DestinationAmount  string `json:"destination_amount,omitempty"`
}

type wireQuote struct {
	SourceAmount      string `json:"source_amount"`
	DestinationAmount string `json:"destination_amount"`
	ConnectorAccount  string `json:"connector_account"`
}

type wireTransfer struct {
	ID                 string    `json:"id"`
	Amount             string    `json:"amount"`
	DestinationAccount string    `json:"destination_account"`
	ConnectorAccount   string    `json:"connector_account,omitempty"`
	ExecutionCondition string    `json:"execution_condition"`
	ExpiresAt          time.Time `json:"expires_at"`
	Data               []byte    `json:"data,omitempty"`
}

type wireFulfillmentResult struct {
	Fulfillment []byte `json:"fulfillment"`
}

type wireFulfillmentEvent struct {
	Transfer    wireTransfer `json:"transfer"`
	Fulfillment []byte       `json:"fulfillment"`
}

func toWireTransfer(transfer *types.Transfer) wireTransfer {
	return wireTransfer{
		ID:                 transfer.ID,
		Amount:             transfer.Amount,
		DestinationAccount: transfer.DestinationAccount,
		ConnectorAccount:   transfer.ConnectorAccount,
		ExecutionCondition: transfer.ExecutionCondition,
		ExpiresAt:          transfer.ExpiresAt,
		Data:               transfer.Data,
	}
}

func fromWireTransfer(transfer wireTransfer) *types.Transfer {
	return &types.Transfer{
		ID:                 transfer.ID,
		Amount:             transfer.Amount,
		DestinationAccount: transfer.DestinationAccount,
		ConnectorAccount:   transfer.ConnectorAccount,
		ExecutionCondition: transfer.ExecutionCondition,
		ExpiresAt:          transfer.ExpiresAt,
		Data:               transfer.Data,
	}
}
