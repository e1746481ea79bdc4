package types

import (
	"time"
)

// SenderConfig holds the configuration for a sender instance.
//
// Fields:
// - Seed: the per-instance secret used to derive deterministic transfer ids.
//   Generated randomly when empty; must be 32 bytes when supplied.
// - MaxHoldDuration: the longest the sender allows funds to stay locked in a
//   pending transfer.
// - DefaultRequestTimeout: the expiry applied to created requests when the
//   caller does not supply one.
type SenderConfig struct {
	Seed                  []byte
	MaxHoldDuration       time.Duration
	DefaultRequestTimeout time.Duration
}

// LedgerConfig holds the configuration for a concrete ledger client.
//
// Fields:
// - Name: the human-readable ledger name used in logs.
// - URL: the ledger endpoint; the URL scheme selects the client implementation.
// - AuthToken: the optional bearer token presented on connect.
type LedgerConfig struct {
	Name      string
	URL       string
	AuthToken string
}
