package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos de error de PostgreSQL que los repositorios traducen a errores
// de dominio.
const pgUniqueViolation = "23505"

// isUniqueViolation detecta el choque contra un índice único (documento,
// numeración o evento duplicado).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
