// Package pgtest starts a throwaway PostgreSQL container with the schema
// migrated, for integration tests.
package pgtest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BradenHooton/alumninet/internal/database"
	"github.com/BradenHooton/alumninet/pkg/auth"
)

// TestDB manages PostgreSQL testcontainer and database operations
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	DB         *database.DB
}

// Setup creates a PostgreSQL testcontainer and runs migrations
func Setup(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("alumninet"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := database.NewFromPool(pool, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := db.Migrate(ctx, "up"); err != nil {
		pool.Close()
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &TestDB{Container: container, ConnString: connStr, DB: db}, nil
}

// Teardown stops the container and closes the connection pool
func (t *TestDB) Teardown(ctx context.Context) error {
	if t.DB != nil {
		t.DB.Close()
	}
	if t.Container != nil {
		return t.Container.Terminate(ctx)
	}
	return nil
}

// Reset truncates all tables for test isolation
func (t *TestDB) Reset(ctx context.Context) error {
	_, err := t.DB.Pool.Exec(ctx, `TRUNCATE TABLE moderation_events, admins, profiles, accounts CASCADE`)
	if err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}

// Member describes a seeded profile.
type Member struct {
	Email      string
	FullName   string
	Branch     string
	Degree     string
	Year       int
	Company    string
	City       string
	Country    string
	Interests  []string
	Onboarded  bool
	Moderation string
	Public     bool
}

// SeedAccount inserts an account with the given password and returns its id.
func (t *TestDB) SeedAccount(ctx context.Context, email, password string) (string, error) {
	var hash *string
	if password != "" {
		h, err := auth.HashPassword(password)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		hash = &h
	}

	var id string
	err := t.DB.Pool.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash) VALUES (lower($1), $2) RETURNING id`,
		email, hash,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert account: %w", err)
	}
	return id, nil
}

// SeedMember inserts an account and a fully populated profile.
func (t *TestDB) SeedMember(ctx context.Context, m Member) (string, error) {
	id, err := t.SeedAccount(ctx, m.Email, "")
	if err != nil {
		return "", err
	}

	interests := m.Interests
	if interests == nil {
		interests = []string{}
	}
	moderation := m.Moderation
	if moderation == "" {
		moderation = "pending"
	}

	_, err = t.DB.Pool.Exec(ctx, `
		INSERT INTO profiles (
			id, email, full_name, degree, branch, graduation_year, employment_type,
			company, city, country, interests, is_public, onboarded, moderation
		)
		VALUES ($1, $2, $3, $4, $5, $6, 'Employed', $7, $8, $9, $10, $11, $12, $13)`,
		id, m.Email, m.FullName, m.Degree, m.Branch, m.Year,
		m.Company, m.City, m.Country, interests, m.Public, m.Onboarded, moderation,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert profile: %w", err)
	}
	return id, nil
}
