package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/taskbrief/taskbrief/internal/store"
)

// PostgreSQL error codes
const (
	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"

	// connectionExceptionClass is the leading class code of PostgreSQL
	// connection exception errors (08xxx)
	connectionExceptionClass = "08"

	// cannotConnectNowCode is returned while the server is starting up or
	// shutting down
	cannotConnectNowCode = "57P03"
)

// MapError maps a database error to an appropriate store error.
// It wraps the original error to preserve context and provide better
// debugging information. Used in all database operations so callers
// classify failures with errors.Is against the store taxonomy. Failures
// with no taxonomy mapping keep their entity and operation context via
// store.StoreError.
func MapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	// Handle common SQL errors
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	// The driver surfaces an unreachable server as a net error or a refused
	// driver handshake; both mean the store itself is down, not the lookup.
	if isConnectionError(err) {
		return fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
	}

	// Handle PostgreSQL-specific errors
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case checkViolationCode:
			return fmt.Errorf(
				"%w: check constraint violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
				err,
			)
		case notNullViolationCode:
			return fmt.Errorf(
				"%w: not null violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ColumnName,
				err,
			)
		}
		if (len(pgErr.Code) >= 2 && pgErr.Code[:2] == connectionExceptionClass) ||
			pgErr.Code == cannotConnectNowCode {
			return fmt.Errorf("%w: %v", store.ErrStorageUnavailable, err)
		}
	}

	// Errors without a taxonomy mapping carry their operation context so
	// operator logs say which store call failed.
	return store.NewStoreError("task", operation, "unexpected database failure", err)
}

// isConnectionError reports whether the error is a transport-level failure
// reaching the database rather than a response from it.
func isConnectionError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	return errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded)
}
