package repositories

import (
	"context"
	"errors"
	"time"

	"wetmill-backend/internal/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation      = "23505"
	foreignKeyViolation  = "23503"
	serializationFailure = "40001"

	serializableAttempts = 3
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// wrap translates driver errors into apperr kinds. what names the record
// for the not-found message.
func wrap(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("%s not found", what)
	}
	switch pgCode(err) {
	case uniqueViolation:
		return apperr.Conflict("%s already exists", what)
	case foreignKeyViolation:
		return apperr.Conflict("%s is still referenced", what)
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal(err, "database error")
}

// beginner is satisfied by *pgxpool.Pool.
type beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// serializable runs fn in a SERIALIZABLE transaction and retries it when
// Postgres reports a serialization failure.
func serializable(ctx context.Context, db beginner, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= serializableAttempts; attempt++ {
		err = inTx(ctx, db, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
		if pgCode(err) != serializationFailure {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt*20) * time.Millisecond):
		}
	}
	return err
}

func inTx(ctx context.Context, db beginner, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
