package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isLockTimeout verifica si un error es un lock_not_available (55P03),
// producido al agotarse el lock_timeout de la transacción.
func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "55P03"
	}
	return false
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
