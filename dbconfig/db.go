package dbconfig

import (
	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// Store loads connector endpoint configuration from Postgres.
type Store struct {
	dbConnStr string
}

// NewStore creates a new Store instance with the provided connection string.
//
// Parameters:
// - connStr: the database connection string.
//
// Returns:
// - *Store: a pointer to the newly created Store instance.
// - error: an error if the connection string is empty.
func NewStore(connStr string) (*Store, error) {
	if connStr == "" {
		return nil, errors.Wrap(lperrors.ErrInvalidArgument, "database connection string is required")
	}

	return &Store{
		dbConnStr: connStr,
	}, nil
}
