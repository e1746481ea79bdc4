package sender

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/ilp-labs/sender-lib/common/types"
	"github.com/ilp-labs/sender-lib/connectionmonitor"
	"github.com/ilp-labs/sender-lib/events"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// SeedSize is the required length of the transfer-id seed.
	SeedSize = 32
	// DefaultMaxHoldDuration bounds how long funds may stay locked in a pending transfer.
	DefaultMaxHoldDuration = 10 * time.Second
	// DefaultRequestTimeout is the expiry applied to created requests without one.
	DefaultRequestTimeout = 30 * time.Second
)

// Sender is the client-side engine for the quote-then-pay request/response
// protocol. It is stateless across calls: the only state it holds is its
// configuration, the shared ledger connection, and per-call fulfillment
// waiters scoped to a single PayRequest.
type Sender struct {
	config *types.SenderConfig
	logger *logrus.Logger
	ledger types.LedgerClient
	hub    *events.FulfillmentHub

	// Connection lifecycle, shared by all concurrent calls.
	connMutex sync.Mutex
	connected bool
	cancelRun context.CancelFunc
	monitor   connectionmonitor.ConnectionMonitor
}

// New creates a new sender instance.
//
// Parameters:
// - config: the sender configuration; nil selects all defaults.
// - ledger: the ledger client collaborator.
// - logger: the logger for logging purposes; nil selects a default logger.
//
// Returns:
// - *Sender: the new sender instance.
// - error: an error if the ledger client is missing or the seed is malformed.
func New(config *types.SenderConfig, ledger types.LedgerClient, logger *logrus.Logger) (*Sender, error) {
	if ledger == nil {
		return nil, errors.Wrap(lperrors.ErrInvalidArgument, "ledger client is required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	cfg := types.SenderConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.MaxHoldDuration <= 0 {
		cfg.MaxHoldDuration = DefaultMaxHoldDuration
	}
	if cfg.DefaultRequestTimeout <= 0 {
		cfg.DefaultRequestTimeout = DefaultRequestTimeout
	}

	if cfg.Seed == nil {
		seed := make([]byte, SeedSize)
		if _, err := rand.Read(seed); err != nil {
			return nil, errors.Wrap(err, "failed to generate seed")
		}
		cfg.Seed = seed
	} else if len(cfg.Seed) != SeedSize {
		return nil, errors.Wrapf(lperrors.ErrInvalidArgument, "seed must be %d bytes, got %d", SeedSize, len(cfg.Seed))
	}

	return &Sender{
		config: &cfg,
		logger: logger,
		ledger: ledger,
		hub:    events.NewFulfillmentHub(logger),
	}, nil
}

// ensureConnected establishes the ledger connection on first use and starts
// the fulfillment dispatch and the connection monitor. Later calls reuse the
// live connection.
func (s *Sender) ensureConnected(ctx context.Context) error {
	s.connMutex.Lock()
	defer s.connMutex.Unlock()

	if s.connected {
		return nil
	}

	if err := s.ledger.Connect(ctx); err != nil {
		return errors.Wrap(err, "failed to connect to ledger")
	}

	// The connection outlives the call that opened it, so background work
	// runs under its own context rather than the caller's.
	runCtx, cancel := context.WithCancel(context.Background())

	if err := s.hub.Start(runCtx); err != nil {
		cancel()
		return err
	}

	if err := s.ledger.SubscribeFulfillments(runCtx, s.hub.Sink()); err != nil {
		s.hub.Stop()
		cancel()
		return errors.Wrap(err, "failed to subscribe to fulfillments")
	}

	monitor := connectionmonitor.NewConnectionMonitor(s.ledger, s.logger, "ledger")
	if err := monitor.Start(runCtx); err != nil {
		s.hub.Stop()
		cancel()
		return err
	}

	s.cancelRun = cancel
	s.monitor = monitor
	s.connected = true

	s.logger.Info("Ledger connection established")
	return nil
}
