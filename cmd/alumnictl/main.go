// Command alumnictl is the operator CLI: schema migrations, the admin
// allowlist and the moderation queue.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BradenHooton/alumninet/internal/config"
	"github.com/BradenHooton/alumninet/internal/database"
	"github.com/BradenHooton/alumninet/internal/repositories"
	"github.com/BradenHooton/alumninet/internal/services"
	pkglogger "github.com/BradenHooton/alumninet/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(buildApp).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// buildApp connects to the database and assembles the services the commands
// drive. Logs go to stderr so command output stays clean.
func buildApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	level := cfg.Server.LogLevel
	if opts.verbose {
		level = "debug"
	}
	logger := pkglogger.New(os.Stderr, level)

	db, err := database.NewConnection(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	accountRepo := repositories.NewAccountRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	adminRepo := repositories.NewAdminRepository(db)
	eventRepo := repositories.NewModerationEventRepository(db)

	var mailer services.Mailer = services.NewLogMailer(logger)
	if cfg.Email.Sender != "" && !opts.noEmail {
		mailCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		sesMailer, err := services.NewSESMailerFromRegion(mailCtx, cfg.Email.AWSRegion, cfg.Email.Sender, cfg.Email.AppBaseURL, logger)
		cancel()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("initialize email service: %w", err)
		}
		mailer = sesMailer
	}

	auditLogger := pkglogger.NewAuditLogger(logger)

	return &app{
		migrator:   db,
		admins:     services.NewAdminService(accountRepo, adminRepo, logger),
		moderation: services.NewModerationService(profileRepo, mailer, nil, logger, auditLogger),
		history:    eventRepo,
		logger:     logger,
		close:      db.Close,
	}, nil
}

var errUsage = errors.New("invalid usage")
