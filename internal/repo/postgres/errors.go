package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a postgres unique constraint
// violation, optionally narrowed to a named constraint.
func IsUniqueViolation(err error, constraint ...string) bool {
	var pgErr *pgconn.PgError

	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return false
	}

	if len(constraint) == 0 {
		return true
	}

	for _, c := range constraint {
		if pgErr.ConstraintName == c {
			return true
		}
	}

	return false
}
