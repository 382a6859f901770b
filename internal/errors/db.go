package errors

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapDBError maps database errors to StoreError instances.
// It handles common database error patterns including:
// - pgx.ErrNoRows / sql.ErrNoRows → NotFound
// - Undefined table → NotFound (schema not installed)
// - Unique constraint violations → Conflict
// - Check / NOT NULL / string length violations → Validation
// - Context timeouts/cancellations → Timeout/Canceled
//
// If the error is not a recognized database error, it returns the original error.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	// Check for context errors first
	if errors.Is(err, context.DeadlineExceeded) {
		return &StoreError{Code: StoreTimeout, Message: "session store timed out", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &StoreError{Code: StoreCanceled, Message: "session store request was canceled", Cause: err}
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return &StoreError{Code: StoreNotFound, Message: "session key not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	return err
}

// mapPgError maps PostgreSQL-specific errors to StoreError instances.
func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UndefinedTable:
		return &StoreError{
			Code:    StoreNotFound,
			Message: "session table is missing; run the session store migration",
			Cause:   pgErr,
		}
	case pgerrcode.UniqueViolation:
		return &StoreError{Code: StoreConflict, Message: "session key was written concurrently", Cause: pgErr}
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.StringDataRightTruncationDataException:
		msg := "session value rejected by the store"
		if pgErr.ColumnName != "" {
			msg += " (column " + pgErr.ColumnName + ")"
		}
		return &StoreError{Code: StoreValidation, Message: msg, Cause: pgErr}
	case pgerrcode.QueryCanceled:
		return &StoreError{Code: StoreTimeout, Message: "session store query was canceled", Cause: pgErr}
	default:
		return &StoreError{Code: StoreInternal, Message: "a session store error occurred", Cause: pgErr}
	}
}
