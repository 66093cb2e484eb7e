package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/BradenHooton/alumninet/internal/database"
	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/BradenHooton/alumninet/pkg/auth"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db, pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...any) error
}

const accountColumns = `id, email, password_hash, google_sub, token_key, created_at, updated_at`

// scanAccountRow handles nullable fields and populates an Account model from a database row
func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var a models.Account
	var passwordHash, googleSub *string

	err := scanner.Scan(
		&a.ID, &a.Email, &passwordHash, &googleSub, &a.TokenKey,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if passwordHash != nil {
		a.PasswordHash = *passwordHash
	}
	if googleSub != nil {
		a.GoogleSub = *googleSub
	}

	return &a, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccountRow(r.pool.QueryRow(ctx, query, id))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE lower(email) = lower($1)`
	return scanAccountRow(r.pool.QueryRow(ctx, query, strings.TrimSpace(email)))
}

func (r *AccountRepository) GetByGoogleSub(ctx context.Context, sub string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE google_sub = $1`
	return scanAccountRow(r.pool.QueryRow(ctx, query, sub))
}

// GetTokenKey satisfies auth.TokenKeyFetcher.
func (r *AccountRepository) GetTokenKey(ctx context.Context, id string) (string, error) {
	var key string
	err := r.pool.QueryRow(ctx, `SELECT token_key FROM accounts WHERE id = $1`, id).Scan(&key)
	if err != nil {
		return "", database.MapPostgresError(err)
	}
	return key, nil
}

// Create inserts the account and its minimal profile row in one
// transaction, so every account has a profile from the start.
func (r *AccountRepository) Create(ctx context.Context, email, passwordHash, googleSub string, fullName, avatarURL *string) (*models.Account, error) {
	tokenKey, err := auth.GenerateTokenKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token key: %w", err)
	}

	var created *models.Account
	err = r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO accounts (email, password_hash, google_sub, token_key)
			VALUES (lower($1), $2, $3, $4)
			RETURNING ` + accountColumns

		a, err := scanAccountRow(tx.QueryRow(ctx, query,
			strings.TrimSpace(email), nullIfEmpty(passwordHash), nullIfEmpty(googleSub), tokenKey,
		))
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, ensureProfileSQL, a.ID, a.Email, fullName, avatarURL); err != nil {
			return database.MapPostgresError(err)
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// LinkGoogle attaches a Google subject to an existing account.
func (r *AccountRepository) LinkGoogle(ctx context.Context, id, sub string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE accounts SET google_sub = $2, updated_at = NOW() WHERE id = $1`, id, sub)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RotateTokenKey invalidates every token the account holds.
func (r *AccountRepository) RotateTokenKey(ctx context.Context, id string) error {
	tokenKey, err := auth.GenerateTokenKey()
	if err != nil {
		return fmt.Errorf("failed to generate token key: %w", err)
	}

	result, err := r.pool.Exec(ctx,
		`UPDATE accounts SET token_key = $2, updated_at = NOW() WHERE id = $1`, id, tokenKey)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
