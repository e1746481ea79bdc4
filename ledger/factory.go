package ledger

import (
	"net/url"
	"sync"

	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/ilp-labs/sender-lib/common/types"
	"github.com/ilp-labs/sender-lib/ledger/ws"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ClientConstructor represents a function that constructs a ledger client.
//
// Parameters:
// - config: the ledger endpoint configuration.
// - logger: the logger for logging purposes.
//
// Returns:
// - types.LedgerClient: the constructed client instance.
// - error: an error if the construction fails.
type ClientConstructor func(config *types.LedgerConfig, logger *logrus.Logger) (types.LedgerClient, error)

// ClientFactory defines the interface for ledger client creation. The URL
// scheme of the endpoint selects the transport implementation.
type ClientFactory interface {
	// RegisterConstructor registers a client constructor for a URL scheme.
	RegisterConstructor(scheme string, constructor ClientConstructor)

	// CreateClient creates a ledger client for the configured endpoint.
	//
	// Parameters:
	// - config: the ledger endpoint configuration.
	// - logger: the logger for logging purposes.
	//
	// Returns:
	// - types.LedgerClient: the created client instance.
	// - error: an error if the endpoint scheme is unsupported.
	CreateClient(config *types.LedgerConfig, logger *logrus.Logger) (types.LedgerClient, error)
}

type clientFactory struct {
	// constructors stores the mapping of URL schemes to their constructors.
	constructors map[string]ClientConstructor
	// constructorsMutex protects access to the constructors map.
	constructorsMutex sync.RWMutex
}

// NewClientFactory creates a new client factory instance with the default
// websocket transports registered.
func NewClientFactory() ClientFactory {
	factory := &clientFactory{
		constructors: make(map[string]ClientConstructor),
	}

	factory.RegisterConstructor("ws", ws.NewClient)
	factory.RegisterConstructor("wss", ws.NewClient)

	return factory
}

// RegisterConstructor registers a client constructor for a URL scheme.
func (f *clientFactory) RegisterConstructor(scheme string, constructor ClientConstructor) {
	f.constructorsMutex.Lock()
	defer f.constructorsMutex.Unlock()

	f.constructors[scheme] = constructor
}

// CreateClient creates a ledger client for the configured endpoint.
func (f *clientFactory) CreateClient(config *types.LedgerConfig, logger *logrus.Logger) (types.LedgerClient, error) {
	if config == nil || config.URL == "" {
		return nil, errors.Wrap(lperrors.ErrInvalidArgument, "ledger url is required")
	}

	endpoint, err := url.Parse(config.URL)
	if err != nil {
		return nil, errors.Wrapf(lperrors.ErrInvalidArgument, "malformed ledger url %q", config.URL)
	}

	f.constructorsMutex.RLock()
	constructor, exists := f.constructors[endpoint.Scheme]
	f.constructorsMutex.RUnlock()

	if !exists {
		return nil, errors.Wrapf(lperrors.ErrInvalidArgument, "unsupported ledger url scheme %q", endpoint.Scheme)
	}

	return constructor(config, logger)
}
