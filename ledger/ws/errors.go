package ws

import (
	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/pkg/errors"
)

// Error codes carried by the ledger's error catalog on the wire.
const (
	codeDuplicateID     = "DuplicateIdError"
	codeDuplicateParams = "DuplicateParamsError"
	codeNotFound        = "FulfillmentNotFoundError"
	codeNoRoute         = "NoRouteFoundError"
	codeInvalidArgument = "InvalidBodyError"
)

// classifyError maps a wire error onto the library's error taxonomy so
// callers can classify with errors.Is regardless of transport.
func classifyError(wireErr *wireError) error {
	var sentinel error
	switch wireErr.Code {
	case codeDuplicateID:
		sentinel = lperrors.ErrDuplicateTransfer
	case codeDuplicateParams:
		sentinel = lperrors.ErrDuplicateTransferParams
	case codeNotFound:
		sentinel = lperrors.ErrFulfillmentNotFound
	case codeNoRoute:
		sentinel = lperrors.ErrNoRoute
	case codeInvalidArgument:
		sentinel = lperrors.ErrInvalidArgument
	default:
		return errors.Errorf("ledger error %s: %s", wireErr.Code, wireErr.Message)
	}

	if wireErr.Message == "" {
		return sentinel
	}
	return errors.Wrap(sentinel, wireErr.Message)
}
