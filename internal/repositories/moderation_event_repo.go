package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/alumninet/internal/database"
	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ModerationEventRepository reads the moderation trail. Events are written
// by ProfileRepository.SetModeration alongside the profile update.
type ModerationEventRepository struct {
	pool *pgxpool.Pool
}

func NewModerationEventRepository(db *database.DB) *ModerationEventRepository {
	return &ModerationEventRepository{pool: db.Pool}
}

// queryRower is satisfied by both *pgxpool.Pool and pgx.Tx.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const moderationEventColumns = `id, profile_id, actor_id, decision, source, metadata, created_at`

// scanModerationEventRow populates a ModerationEvent model from a database row
func scanModerationEventRow(row rowScanner) (*models.ModerationEvent, error) {
	var ev models.ModerationEvent
	var decision string

	err := row.Scan(
		&ev.ID, &ev.ProfileID, &ev.ActorID, &decision, &ev.Source, &ev.Metadata, &ev.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	ev.Decision = models.Moderation(decision)

	return &ev, nil
}

func scanModerationEventRows(rows pgx.Rows) ([]*models.ModerationEvent, error) {
	defer rows.Close()

	events := make([]*models.ModerationEvent, 0)

	for rows.Next() {
		ev, err := scanModerationEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan moderation event: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating moderation event rows: %w", err)
	}

	return events, nil
}

func insertModerationEvent(ctx context.Context, q queryRower, ev *models.ModerationEvent, profileID string, actorID *string) (*models.ModerationEvent, error) {
	query := `
		INSERT INTO moderation_events (profile_id, actor_id, decision, source, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + moderationEventColumns

	source := ev.Source
	if source == "" {
		source = models.ModerationSourceAPI
	}

	created, err := scanModerationEventRow(q.QueryRow(ctx, query,
		profileID, actorID, string(ev.Decision), source, ev.Metadata,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to record moderation event: %w", err)
	}
	return created, nil
}

// ListByProfile returns the newest events for a profile first.
func (r *ModerationEventRepository) ListByProfile(ctx context.Context, profileID string, limit int) ([]*models.ModerationEvent, error) {
	query := `
		SELECT ` + moderationEventColumns + `
		FROM moderation_events
		WHERE profile_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query moderation events: %w", err)
	}

	return scanModerationEventRows(rows)
}
