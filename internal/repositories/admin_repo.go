package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/alumninet/internal/database"
	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepository manages the moderation allowlist.
type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(db *database.DB) *AdminRepository {
	return &AdminRepository{pool: db.Pool}
}

func (r *AdminRepository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM admins WHERE user_id = $1)`, userID,
	).Scan(&ok)
	if err != nil {
		return false, database.MapPostgresError(err)
	}
	return ok, nil
}

// Grant is idempotent; granting an existing admin keeps the original row.
func (r *AdminRepository) Grant(ctx context.Context, userID string, grantedBy *string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO admins (user_id, granted_by)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`, userID, grantedBy)
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

func (r *AdminRepository) Revoke(ctx context.Context, userID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE user_id = $1`, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *AdminRepository) List(ctx context.Context) ([]*models.Admin, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, granted_at, granted_by FROM admins ORDER BY granted_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	admins := make([]*models.Admin, 0)
	for rows.Next() {
		var a models.Admin
		if err := rows.Scan(&a.UserID, &a.GrantedAt, &a.GrantedBy); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating admin rows: %w", err)
	}

	return admins, nil
}
