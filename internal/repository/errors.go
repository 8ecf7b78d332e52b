package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by updates and deletes that matched no row.
	// Reads return (nil, nil) for absent rows instead.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate maps unique-constraint violations.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInvalidReference maps foreign-key violations.
	ErrInvalidReference = errors.New("invalid reference")
)

// classify folds Postgres constraint violations into the package
// sentinels so services can present them as user-facing messages.
// Anything else passes through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case "23503":
			return ErrInvalidReference
		}
	}
	return err
}

// IsRetryable reports whether err is a transient Postgres failure
// (serialization, deadlock, lock timeout) worth retrying.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}
