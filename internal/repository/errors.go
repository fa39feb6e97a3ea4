package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound signals that no record matched the lookup key.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate signals a unique-key violation on create.
	ErrDuplicate = errors.New("record already exists")
)

const (
	uniqueViolation      = "23505"
	invalidTextRepresent = "22P02"
)

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return ErrDuplicate
		case invalidTextRepresent:
			// a subject that is not a uuid cannot name any row
			return ErrNotFound
		}
	}
	return err
}
