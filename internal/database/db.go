package database

import (
	"context"
	"errors"

	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// checkFields names the profile field behind each CHECK constraint so a
// violation surfaces as a field error rather than a bare 400.
var checkFields = map[string]struct{ field, message string }{
	"profiles_interests_check":       {"interests", "choose at most 6 interests from the list"},
	"profiles_graduation_year_check": {"graduation_year", "graduation year is out of range"},
	"profiles_phone_e164_check":      {"phone", "phone number must be in international format"},
	"profiles_moderation_check":      {"moderation", "unknown moderation state"},
}

// MapPostgresError translates driver errors into model sentinels.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		return models.ErrConflict
	case "23514": // check_violation
		if f, ok := checkFields[pgErr.ConstraintName]; ok {
			return &models.ValidationError{Field: f.field, Message: f.message}
		}
		return models.ErrBadRequest
	case "23503", "23502": // foreign key, not null
		return models.ErrBadRequest
	case "22P02": // malformed uuid in a lookup
		return models.ErrNotFound
	}
	return err
}

// WithTransaction commits when fn returns nil and rolls back otherwise.
func (db *DB) WithTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		switch p := recover(); {
		case p != nil:
			_ = tx.Rollback(ctx)
			panic(p)
		case err != nil:
			_ = tx.Rollback(ctx)
		default:
			err = tx.Commit(ctx)
		}
	}()

	return fn(tx)
}
