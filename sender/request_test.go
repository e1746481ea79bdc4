package sender

import (
	"strings"
	"testing"
	"time"

	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/ilp-labs/sender-lib/common/types"
	"github.com/ilp-labs/sender-lib/ledger/mock"
	"github.com/ilp-labs/sender-lib/psk"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSecret() []byte {
	secret := make([]byte, psk.SharedSecretSize)
	for i := range secret {
		secret[i] = byte(0xa0 ^ i)
	}
	return secret
}

func testSeed() []byte {
	seed := make([]byte, SeedSize)
	for i := range seed {
		seed[i] = byte(i * 3)
	}
	return seed
}

func newTestSender(t *testing.T, config *types.SenderConfig) (*Sender, *mock.LedgerClient) {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	ledger := mock.New()

	if config == nil {
		config = &types.SenderConfig{}
	}
	if config.Seed == nil {
		config.Seed = testSeed()
	}

	s, err := New(config, ledger, logger)
	require.NoError(t, err)
	t.Cleanup(s.StopListening)

	return s, ledger
}

func TestNewValidation(t *testing.T) {
	logger := logrus.New()

	_, err := New(nil, nil, logger)
	assert.True(t, errors.Is(err, lperrors.ErrInvalidArgument))

	_, err = New(&types.SenderConfig{Seed: []byte("short")}, mock.New(), logger)
	assert.True(t, errors.Is(err, lperrors.ErrInvalidArgument))

	// Nil config selects defaults, including a random seed.
	s, err := New(nil, mock.New(), logger)
	require.NoError(t, err)
	assert.Len(t, s.config.Seed, SeedSize)
	assert.Equal(t, DefaultMaxHoldDuration, s.config.MaxHoldDuration)
	assert.Equal(t, DefaultRequestTimeout, s.config.DefaultRequestTimeout)
}

func TestCreateRequestAppendsDiscriminator(t *testing.T) {
	s, _ := newTestSender(t, nil)

	request, err := s.CreateRequest("example.ledger.alice", "100", testSecret(), nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(request.DestinationAccount, "example.ledger.alice."))
	assert.NotEqual(t, "example.ledger.alice.", request.DestinationAccount)

	// Fresh randomness per request keeps repeated requests distinct.
	second, err := s.CreateRequest("example.ledger.alice", "100", testSecret(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, request.DestinationAccount, second.DestinationAccount)
	assert.NotEqual(t, request.ExecutionCondition, second.ExecutionCondition)
}

func TestCreateRequestCallerSuppliedID(t *testing.T) {
	s, _ := newTestSender(t, nil)

	request, err := s.CreateRequest("example.ledger.alice", "100", testSecret(), &RequestOptions{ID: "invoice-7"})
	require.NoError(t, err)
	assert.Equal(t, "example.ledger.alice.invoice-7", request.DestinationAccount)
}

func TestCreateRequestDefaultExpiry(t *testing.T) {
	s, _ := newTestSender(t, &types.SenderConfig{DefaultRequestTimeout: 30 * time.Second})

	request, err := s.CreateRequest("example.ledger.alice", "100", testSecret(), nil)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Second), request.ExpiresAt, time.Second)
}

func TestCreateRequestEncryptsData(t *testing.T) {
	s, _ := newTestSender(t, nil)
	plaintext := []byte(`{"note":"two coffees"}`)

	request, err := s.CreateRequest("example.ledger.alice", "100", testSecret(), &RequestOptions{Data: plaintext})
	require.NoError(t, err)
	require.NotEmpty(t, request.Data)
	assert.NotContains(t, string(request.Data), "coffees")

	decrypted, err := psk.DecryptData(request.Data, testSecret())
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestCreateRequestConditionReproducible(t *testing.T) {
	s, _ := newTestSender(t, nil)
	expiresAt := time.Now().Add(time.Minute)

	request, err := s.CreateRequest("example.ledger.alice", "100", testSecret(), &RequestOptions{
		ID:        "invoice-7",
		ExpiresAt: expiresAt,
	})
	require.NoError(t, err)

	// The condition is a pure function of the assembled fields and the secret.
	condition, err := psk.DeriveCondition(psk.RequestFields{
		DestinationAccount: request.DestinationAccount,
		DestinationAmount:  request.DestinationAmount,
		ExpiresAt:          request.ExpiresAt,
		Data:               request.Data,
	}, testSecret())
	require.NoError(t, err)
	assert.Equal(t, condition.String(), request.ExecutionCondition)
}

func TestCreateRequestValidation(t *testing.T) {
	s, _ := newTestSender(t, nil)

	_, err := s.CreateRequest("", "100", testSecret(), nil)
	assert.True(t, errors.Is(err, lperrors.ErrInvalidArgument))

	_, err = s.CreateRequest("example.ledger.alice", "", testSecret(), nil)
	assert.True(t, errors.Is(err, lperrors.ErrInvalidArgument))

	_, err = s.CreateRequest("example.ledger.alice", "ten", testSecret(), nil)
	assert.True(t, errors.Is(err, lperrors.ErrInvalidArgument))

	_, err = s.CreateRequest("example.ledger.alice", "-5", testSecret(), nil)
	assert.True(t, errors.Is(err, lperrors.ErrInvalidArgument))

	_, err = s.CreateRequest("example.ledger.alice", "100", []byte("bad"), nil)
	assert.True(t, errors.Is(err, lperrors.ErrInvalidKey))
}
