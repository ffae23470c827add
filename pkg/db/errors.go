package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE class 23, unique_violation.
const pgUniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation,
// optionally restricted to one named constraint. Postgres surfaces a typed
// *pgconn.PgError carrying the SQLSTATE and constraint name, which is matched
// first. The sqlite driver used in tests reports no typed error and no
// constraint name, so any of its unique failures match by message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolationCode {
			return false
		}
		return constraintName == "" || pgErr.ConstraintName == constraintName
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
