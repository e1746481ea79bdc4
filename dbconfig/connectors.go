package dbconfig

import (
	"context"
	"database/sql"

	lperrors "github.com/ilp-labs/sender-lib/common/errors"
	"github.com/ilp-labs/sender-lib/dbconfig/models"
)

// GetConnectors returns all configured connectors, optionally filtering by
// active status.
func (s *Store) GetConnectors(ctx context.Context, activeOnly bool) ([]models.Connector, error) {
	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return nil, lperrors.ErrDatabaseConnect
	}
	defer db.Close()

	query := `
      SELECT
          id,
          account,
          name,
          ledger_url,
          auth_token,
          active,
          created_at,
          updated_at
      FROM connectors
  `

	var args []interface{}
	if activeOnly {
		query += " WHERE active = $1"
		args = append(args, true)
	}

	query += " ORDER BY account ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, lperrors.ErrDatabaseConnect
	}
	defer rows.Close()

	var connectors []models.Connector
	for rows.Next() {
		connector, err := scanConnector(rows.Scan)
		if err != nil {
			return nil, lperrors.ErrDatabaseConnect
		}
		connectors = append(connectors, *connector)
	}

	if err = rows.Err(); err != nil {
		return nil, lperrors.ErrDatabaseConnect
	}

	return connectors, nil
}

// GetConnectorByAccount returns the connector configured for the given account.
func (s *Store) GetConnectorByAccount(ctx context.Context, account string) (*models.Connector, error) {
	if account == "" {
		return nil, lperrors.ErrInvalidArgument
	}

	db, err := sql.Open("postgres", s.dbConnStr)
	if err != nil {
		return nil, lperrors.ErrDatabaseConnect
	}
	defer db.Close()

	row := db.QueryRowContext(ctx, `
       SELECT
           id,
           account,
           name,
           ledger_url,
           auth_token,
           active,
           created_at,
           updated_at
       FROM connectors
       WHERE account = $1
    `, account)

	connector, err := scanConnector(row.Scan)
	if err == sql.ErrNoRows {
		return nil, lperrors.ErrConnectorNotFound
	}
	if err != nil {
		return nil, lperrors.ErrDatabaseConnect
	}

	return connector, nil
}

// scanConnector maps one connectors row, tolerating NULL optional columns.
func scanConnector(scan func(dest ...interface{}) error) (*models.Connector, error) {
	var connector models.Connector
	var ledgerURL sql.NullString
	var authToken sql.NullString

	err := scan(
		&connector.ID,
		&connector.Account,
		&connector.Name,
		&ledgerURL,
		&authToken,
		&connector.Active,
		&connector.CreatedAt,
		&connector.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if ledgerURL.Valid {
		connector.LedgerURL = ledgerURL.String
	}
	if authToken.Valid {
		connector.AuthToken = authToken.String
	}

	return &connector, nil
}
