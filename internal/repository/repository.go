// Package repository contains the persistence layer. Repositories expose
// interfaces backed by PostgreSQL; lookups return (nil, nil) when no row
// matches, and unique-constraint violations surface as ErrDuplicate so
// services can map them to conflicts.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate row")

// ErrNoRows is returned by conditional updates that matched nothing.
var ErrNoRows = errors.New("no rows affected")

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
