package errors

import "github.com/pkg/errors"

var (
	ErrInvalidArgument         = errors.New("missing or malformed argument")
	ErrInvalidKey              = errors.New("invalid shared secret")
	ErrAuthentication          = errors.New("data authentication failed")
	ErrEmptyQuote              = errors.New("connector returned an empty quote")
	ErrNoRoute                 = errors.New("no route to destination")
	ErrDuplicateTransfer       = errors.New("transfer id already submitted")
	ErrDuplicateTransferParams = errors.New("transfer id already submitted with different parameters")
	ErrFulfillmentNotFound     = errors.New("transfer has no fulfillment")
	ErrExpiredTransfer         = errors.New("transfer expired before fulfillment")
	ErrNotConnected            = errors.New("ledger client not connected")
	ErrDatabaseConnect         = errors.New("failed to connect to database")
	ErrConnectorNotFound       = errors.New("connector not found")
)
