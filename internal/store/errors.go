package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

// MapError maps infrastructure failures onto voting error codes. Errors that
// already carry a code pass through unchanged.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var known *voting.Error
	if errors.As(err, &known) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return coded(voting.CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return coded(voting.CodeConflict, op, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return coded(voting.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return coded(voting.CodeInternal, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return coded(voting.CodeConflict, op, err) // unique_violation
		case "23503":
			return coded(voting.CodeNotFound, op, err) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return coded(voting.CodeConflict, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate key"):
		return coded(voting.CodeConflict, op, err)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "deadlock"):
		return coded(voting.CodeConflict, op, err)
	default:
		return coded(voting.CodeInternal, op, err)
	}
}

var publicMessages = map[voting.ErrorCode]string{
	voting.CodeNotFound: "resource not found",
	voting.CodeConflict: "concurrent update, retry",
	voting.CodeInternal: "internal error",
}

// coded attaches a fixed client-facing message; the driver error stays in Cause.
func coded(code voting.ErrorCode, op string, err error) error {
	return voting.NewError(code, op, publicMessages[code], err)
}
