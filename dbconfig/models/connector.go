package models

import (
	"time"

	"github.com/ilp-labs/sender-lib/common/types"
)

// Connector is a configured connector endpoint row.
type Connector struct {
	ID        int64
	Account   string
	Name      string
	LedgerURL string
	AuthToken string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ToLedgerConfig converts the connector row into a ledger client configuration.
func (c *Connector) ToLedgerConfig() *types.LedgerConfig {
	return &types.LedgerConfig{
		Name:      c.Name,
		URL:       c.LedgerURL,
		AuthToken: c.AuthToken,
	}
}
