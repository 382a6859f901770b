package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError_ContextErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode StoreCode
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantCode: StoreTimeout},
		{name: "canceled", err: context.Canceled, wantCode: StoreCanceled},
		{name: "wrapped canceled", err: fmt.Errorf("exec: %w", context.Canceled), wantCode: StoreCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err)
			if !IsStoreCode(err, tt.wantCode) {
				t.Errorf("MapDBError() code = %v, want %v", StoreCodeOf(err), tt.wantCode)
			}
		})
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	err := MapDBError(pgx.ErrNoRows)
	if !IsStoreCode(err, StoreNotFound) {
		t.Errorf("MapDBError(pgx.ErrNoRows) should be not_found, got %v", StoreCodeOf(err))
	}
}

func TestMapDBError_PgErrors(t *testing.T) {
	tests := []struct {
		name     string
		pgErr    *pgconn.PgError
		wantCode StoreCode
	}{
		{name: "undefined table", pgErr: &pgconn.PgError{Code: pgerrcode.UndefinedTable}, wantCode: StoreNotFound},
		{name: "unique violation", pgErr: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, wantCode: StoreConflict},
		{name: "not null", pgErr: &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "value"}, wantCode: StoreValidation},
		{name: "query canceled", pgErr: &pgconn.PgError{Code: pgerrcode.QueryCanceled}, wantCode: StoreTimeout},
		{name: "other", pgErr: &pgconn.PgError{Code: pgerrcode.DiskFull}, wantCode: StoreInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if !IsStoreCode(err, tt.wantCode) {
				t.Fatalf("code = %v, want %v", StoreCodeOf(err), tt.wantCode)
			}
			var pgErr *pgconn.PgError
			if !errors.As(err, &pgErr) {
				t.Fatalf("cause should be preserved")
			}
		})
	}
}

func TestMapDBError_Passthrough(t *testing.T) {
	orig := errors.New("boom")
	if err := MapDBError(orig); !errors.Is(err, orig) || StoreCodeOf(err) != "" {
		t.Fatalf("unrecognized errors should pass through unchanged, got %v", err)
	}
}
