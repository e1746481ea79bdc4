package ws

import (
	"testing"

	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		code     string
		sentinel error
	}{
		{codeDuplicateID, lperrors.ErrDuplicateTransfer},
		{codeDuplicateParams, lperrors.ErrDuplicateTransferParams},
		{codeNotFound, lperrors.ErrFulfillmentNotFound},
		{codeNoRoute, lperrors.ErrNoRoute},
		{codeInvalidArgument, lperrors.ErrInvalidArgument},
	}

	for _, tc := range cases {
		err := classifyError(&wireError{Code: tc.code, Message: "details"})
		assert.True(t, errors.Is(err, tc.sentinel), "code %s", tc.code)
		assert.Contains(t, err.Error(), "details")
	}
}

func TestClassifyErrorUnknownCode(t *testing.T) {
	err := classifyError(&wireError{Code: "LedgerOnFire", Message: "evacuate"})
	assert.False(t, errors.Is(err, lperrors.ErrDuplicateTransfer))
	assert.Contains(t, err.Error(), "LedgerOnFire")
}

func TestClassifyErrorWithoutMessage(t *testing.T) {
	err := classifyError(&wireError{Code: codeNotFound})
	assert.True(t, errors.Is(err, lperrors.ErrFulfillmentNotFound))
}
