package connectionmonitor

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// healthCheckInterval defines interval between connection health checks
	healthCheckInterval = 30 * time.Second
	// reconnectTimeout defines timeout between reconnection attempts
	reconnectTimeout = 5 * time.Second
	// maxReconnectAttempts defines maximum number of reconnection attempts
	maxReconnectAttempts = 3
)

// ConnectionMonitor represents connection state monitoring interface
type ConnectionMonitor interface {
	// Start starts connection monitoring
	Start(ctx context.Context) error
	// Stop stops connection monitoring
	Stop()
}

// HealthChecker is the subset of a ledger connection the monitor drives.
type HealthChecker interface {
	// CheckConnection checks if the connection is alive
	CheckConnection(ctx context.Context) error
	// Reconnect attempts to re-establish the ledger connection
	Reconnect(ctx context.Context) error
}

type ledgerMonitor struct {
	client       HealthChecker
	logger       *logrus.Logger
	ledgerName   string
	stopChan     chan struct{}
	isMonitoring bool
	monitorMutex sync.RWMutex
}

// NewConnectionMonitor creates a new connection monitor instance.
//
// Parameters:
// - client: the ledger connection to monitor.
// - logger: the logger for logging purposes.
// - ledgerName: the name of the monitored ledger.
//
// Returns:
// - ConnectionMonitor: the new connection monitor instance.
func NewConnectionMonitor(
	client HealthChecker,
	logger *logrus.Logger,
	ledgerName string,
) ConnectionMonitor {
	return &ledgerMonitor{
		client:     client,
		logger:     logger,
		ledgerName: ledgerName,
		stopChan:   make(chan struct{}),
	}
}

// Start starts connection monitoring.
//
// Parameters:
// - ctx: the context for managing the monitoring lifetime.
//
// Returns:
// - error: an error if the connection monitor is already running.
func (m *ledgerMonitor) Start(ctx context.Context) error {
	m.monitorMutex.Lock()
	if m.isMonitoring {
		m.monitorMutex.Unlock()
		return errors.Errorf("connection monitor is already running for ledger %s", m.ledgerName)
	}
	m.isMonitoring = true
	m.monitorMutex.Unlock()

	go m.monitorConnection(ctx)
	return nil
}

// Stop stops connection monitoring.
func (m *ledgerMonitor) Stop() {
	m.monitorMutex.Lock()
	defer m.monitorMutex.Unlock()

	if !m.isMonitoring {
		return
	}

	close(m.stopChan)
	m.isMonitoring = false
}

// monitorConnection checks the connection on a fixed interval and drives
// reconnection when a check fails.
func (m *ledgerMonitor) monitorConnection(ctx context.Context) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.WithField("ledger", m.ledgerName).Info("Connection monitoring stopped due to context cancellation")
			return

		case <-m.stopChan:
			m.logger.WithField("ledger", m.ledgerName).Info("Connection monitoring stopped")
			return

		case <-ticker.C:
			if err := m.checkAndReconnect(ctx); err != nil {
				m.logger.WithFields(logrus.Fields{
					"ledger": m.ledgerName,
					"error":  err,
				}).Error("Failed to check or reconnect")
			}
		}
	}
}

// checkAndReconnect verifies the connection and retries reconnection a
// bounded number of times when the check fails.
func (m *ledgerMonitor) checkAndReconnect(ctx context.Context) error {
	err := m.client.CheckConnection(ctx)
	if err == nil {
		return nil
	}

	m.logger.WithFields(logrus.Fields{
		"ledger": m.ledgerName,
		"error":  err,
	}).Warn("Connection check failed, attempting to reconnect")

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		err := m.client.Reconnect(ctx)
		if err == nil {
			m.logger.WithFields(logrus.Fields{
				"ledger":  m.ledgerName,
				"attempt": attempt,
			}).Info("Ledger connection re-established")
			return nil
		}

		m.logger.WithFields(logrus.Fields{
			"ledger":  m.ledgerName,
			"attempt": attempt,
			"error":   err,
		}).Error("Reconnection attempt failed")

		if attempt == maxReconnectAttempts {
			return errors.Wrapf(err, "failed to reconnect to ledger %s", m.ledgerName)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectTimeout):
		}
	}

	return nil
}
