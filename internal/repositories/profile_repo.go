package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/alumninet/internal/database"
	"github.com/BradenHooton/alumninet/internal/directory"
	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db, pool: db.Pool}
}

const profileColumns = `id, email, full_name, avatar_url, degree, branch, graduation_year,
	employment_type, company, designation, phone_e164, city, country, linkedin,
	interests, is_public, onboarded, moderation, moderated_at, moderated_by,
	accepted_terms, accepted_privacy, created_at, updated_at, last_active_at`

// ensureProfileSQL creates the minimal row for an account. An existing row
// only has its activity timestamp refreshed.
const ensureProfileSQL = `
	INSERT INTO profiles (id, email, full_name, avatar_url)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE SET last_active_at = NOW()`

// scanProfileRow handles nullable fields and populates a Profile model from a database row
func scanProfileRow(scanner rowScanner) (*models.Profile, error) {
	var p models.Profile
	var moderation string
	var interests []string

	err := scanner.Scan(
		&p.ID, &p.Email, &p.FullName, &p.AvatarURL, &p.Degree, &p.Branch, &p.GraduationYear,
		&p.EmploymentType, &p.Company, &p.Designation, &p.PhoneE164, &p.City, &p.Country, &p.LinkedIn,
		&interests, &p.IsPublic, &p.Onboarded, &moderation, &p.ModeratedAt, &p.ModeratedBy,
		&p.AcceptedTerms, &p.AcceptedPrivacy, &p.CreatedAt, &p.UpdatedAt, &p.LastActiveAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	p.Moderation, err = models.ParseModeration(moderation)
	if err != nil {
		return nil, err
	}
	if interests == nil {
		interests = []string{}
	}
	p.Interests = interests

	return &p, nil
}

func scanDirectoryRows(rows pgx.Rows) ([]*models.DirectoryEntry, error) {
	defer rows.Close()

	entries := make([]*models.DirectoryEntry, 0, directory.PageSize)

	for rows.Next() {
		var e models.DirectoryEntry
		err := rows.Scan(
			&e.ID, &e.FullName, &e.AvatarURL, &e.Degree, &e.Branch, &e.GraduationYear,
			&e.EmploymentType, &e.Company, &e.Designation, &e.City, &e.Country,
			&e.LinkedIn, &e.Interests,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory entry: %w", err)
		}
		if e.Interests == nil {
			e.Interests = []string{}
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating directory rows: %w", err)
	}

	return entries, nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfileRow(r.pool.QueryRow(ctx, query, id))
}

// GetFlags reads only what the access gate needs.
func (r *ProfileRepository) GetFlags(ctx context.Context, id string) (*models.ProfileFlags, error) {
	var flags models.ProfileFlags
	err := r.pool.QueryRow(ctx,
		`SELECT onboarded, moderation = 'approved' FROM profiles WHERE id = $1`, id,
	).Scan(&flags.Onboarded, &flags.Approved)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &flags, nil
}

// Ensure creates the profile row on first sign-in and bumps last_active_at
// on later ones. Existing field values are never overwritten.
func (r *ProfileRepository) Ensure(ctx context.Context, id, email string, fullName, avatarURL *string) error {
	if _, err := r.pool.Exec(ctx, ensureProfileSQL, id, email, fullName, avatarURL); err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

// SaveOnboarding writes every owner-editable field, marks the profile
// onboarded and records consent. Moderation columns are left alone, and a
// nil avatar keeps the stored one.
func (r *ProfileRepository) SaveOnboarding(ctx context.Context, id string, u *models.OnboardingUpdate) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (
			id, email, full_name, avatar_url, phone_e164, city, country,
			graduation_year, degree, branch, employment_type, company, designation,
			linkedin, interests, is_public, onboarded, accepted_terms, accepted_privacy
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, TRUE, TRUE, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			avatar_url = COALESCE(EXCLUDED.avatar_url, profiles.avatar_url),
			phone_e164 = EXCLUDED.phone_e164,
			city = EXCLUDED.city,
			country = EXCLUDED.country,
			graduation_year = EXCLUDED.graduation_year,
			degree = EXCLUDED.degree,
			branch = EXCLUDED.branch,
			employment_type = EXCLUDED.employment_type,
			company = EXCLUDED.company,
			designation = EXCLUDED.designation,
			linkedin = EXCLUDED.linkedin,
			interests = EXCLUDED.interests,
			is_public = EXCLUDED.is_public,
			onboarded = TRUE,
			accepted_terms = TRUE,
			accepted_privacy = TRUE,
			updated_at = NOW()
		RETURNING ` + profileColumns

	interests := u.Interests
	if interests == nil {
		interests = []string{}
	}

	profile, err := scanProfileRow(r.pool.QueryRow(ctx, query,
		id, u.Email, u.FullName, u.AvatarURL, u.PhoneE164, u.City, u.Country,
		u.GraduationYear, u.Degree, u.Branch, u.EmploymentType, u.Company, u.Designation,
		u.LinkedIn, interests, u.IsPublic,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to save onboarding: %w", err)
	}
	return profile, nil
}

// Search runs the count and page statements of q in a single round trip.
func (r *ProfileRepository) Search(ctx context.Context, q directory.Query) ([]*models.DirectoryEntry, int64, error) {
	batch := &pgx.Batch{}
	batch.Queue(q.CountSQL, q.CountArgs...)
	batch.Queue(q.PageSQL, q.PageArgs...)

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	var total int64
	if err := results.QueryRow().Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := results.Query()
	if err != nil {
		return nil, 0, err
	}
	entries, err := scanDirectoryRows(rows)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// CountPending counts onboarded profiles awaiting review.
func (r *ProfileRepository) CountPending(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM profiles WHERE onboarded = TRUE AND moderation = 'pending'`

	var n int64
	if err := r.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending profiles: %w", err)
	}
	return n, nil
}

// ListPending returns onboarded profiles awaiting review, oldest first.
func (r *ProfileRepository) ListPending(ctx context.Context, limit int) ([]*models.PendingMember, error) {
	query := `
		SELECT id, email, full_name, degree, branch, graduation_year,
		       company, designation, linkedin, created_at
		FROM profiles
		WHERE onboarded = TRUE AND moderation = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending profiles: %w", err)
	}
	defer rows.Close()

	members := make([]*models.PendingMember, 0)
	for rows.Next() {
		var m models.PendingMember
		if err := rows.Scan(
			&m.ID, &m.Email, &m.FullName, &m.Degree, &m.Branch, &m.GraduationYear,
			&m.Company, &m.Designation, &m.LinkedIn, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pending profile: %w", err)
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending rows: %w", err)
	}

	return members, nil
}

// ModerationResult describes a profile after a moderation decision.
type ModerationResult struct {
	ProfileID   string
	Email       string
	FullName    *string
	Decision    models.Moderation
	ModeratedAt time.Time
}

// SetModeration records decision on the profile and appends the matching
// moderation event in the same transaction. actorID is nil for operator
// actions taken outside the web app.
func (r *ProfileRepository) SetModeration(ctx context.Context, profileID string, decision models.Moderation, actorID *string, source string) (*ModerationResult, error) {
	var result ModerationResult

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE profiles
			SET moderation = $2, moderated_at = NOW(), moderated_by = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING id, email, full_name, moderation, moderated_at
		`

		var moderation string
		err := tx.QueryRow(ctx, query, profileID, string(decision), actorID).Scan(
			&result.ProfileID, &result.Email, &result.FullName, &moderation, &result.ModeratedAt,
		)
		if err != nil {
			return database.MapPostgresError(err)
		}
		result.Decision = models.Moderation(moderation)

		_, err = insertModerationEvent(ctx, tx, &models.ModerationEvent{
			Decision: decision,
			Source:   source,
			Metadata: models.EventMetadata{},
		}, profileID, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}
