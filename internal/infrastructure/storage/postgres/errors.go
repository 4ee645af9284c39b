package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"stockpulse/internal/core/apperror"
)

// Postgres error codes mapped onto application errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ConstraintField names the business field guarded by each unique constraint.
var ConstraintField = map[string]string{
	"purchases_code_key":     "code",
	"items_serial_real_key":  "serial",
	"sales_external_ref_key": "externalRef",
}

// MapError converts driver errors into application errors. value is the
// offending business value reported on duplicates.
func MapError(err error, entity string, value any, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFound(entity, value)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			field := ConstraintField[pgErr.ConstraintName]
			if field == "" {
				field = pgErr.ConstraintName
			}
			return apperror.NewDuplicate(entity, field, fmt.Sprint(value)).WithCause(err)
		case pgForeignKeyViolation:
			return apperror.NewConflict(fmt.Sprintf("%s is referenced by other records", entity)).
				WithDetail("entity", entity).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
	}
	return fmt.Errorf("%s %s: %w", op, entity, err)
}
