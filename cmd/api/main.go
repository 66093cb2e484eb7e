package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/BradenHooton/alumninet/internal/access"
	"github.com/BradenHooton/alumninet/internal/auth"
	"github.com/BradenHooton/alumninet/internal/background"
	"github.com/BradenHooton/alumninet/internal/config"
	"github.com/BradenHooton/alumninet/internal/database"
	"github.com/BradenHooton/alumninet/internal/handlers"
	"github.com/BradenHooton/alumninet/internal/metrics"
	middlewareCustom "github.com/BradenHooton/alumninet/internal/middleware"
	"github.com/BradenHooton/alumninet/internal/repositories"
	"github.com/BradenHooton/alumninet/internal/routes"
	"github.com/BradenHooton/alumninet/internal/services"
	"github.com/BradenHooton/alumninet/internal/storage"
	pkghttp "github.com/BradenHooton/alumninet/pkg/http"
	pkglogger "github.com/BradenHooton/alumninet/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := pkglogger.New(os.Stdout, cfg.Server.LogLevel)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(context.Background(), &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := db.Migrate(ctx, "up")
		cancel()
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	adminRepo := repositories.NewAdminRepository(db)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Refresh-token denylist
	var denylist auth.Denylist
	var memDenylist *auth.MemoryDenylist
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis not reachable at startup", slog.Any("error", err))
		}
		cancel()
		denylist = auth.NewRedisDenylist(rdb)
	} else {
		logger.Warn("REDIS_ADDR not set, using in-process denylist")
		memDenylist = auth.NewMemoryDenylist()
		denylist = memDenylist
	}

	// Token and session management
	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
		accountRepo,
	)
	csrfManager := auth.NewCSRFTokenManager(cfg.Auth.JWTSecret, cfg.Auth.RefreshTokenExpiry)
	cookieConfig := auth.CookieConfig{
		Domain:   cfg.Auth.CookieDomain,
		Secure:   cfg.Auth.CookieSecure,
		SameSite: cfg.Auth.CookieSameSite,
	}
	resolver := auth.NewSessionResolver(tokenManager, denylist, csrfManager, cookieConfig, cfg.Redis.FailClosed, logger)

	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelay:      cfg.Auth.TimingBaseDelay,
		RandomDelay:    cfg.Auth.TimingRandomDelay,
		DelayOnSuccess: true,
	})

	var google services.IdentityVerifier
	if cfg.Auth.GoogleClientID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		verifier, err := auth.NewGoogleVerifierFromEnv(ctx, cfg.Auth.GoogleClientID)
		cancel()
		if err != nil {
			logger.Error("failed to initialize google sign-in", slog.Any("error", err))
			os.Exit(1)
		}
		google = verifier
	}

	// Outbound integrations
	var mailer services.Mailer = services.NewLogMailer(logger)
	if cfg.Email.Sender != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		sesMailer, err := services.NewSESMailerFromRegion(ctx, cfg.Email.AWSRegion, cfg.Email.Sender, cfg.Email.AppBaseURL, logger)
		cancel()
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
		mailer = sesMailer
	}

	avatars, err := storage.NewAvatarResolverFromConfig(context.Background(), &cfg.Storage)
	if err != nil {
		logger.Error("failed to initialize avatar storage", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
	auditLogger := pkglogger.NewAuditLogger(logger)
	authService := services.NewAuthService(accountRepo, profileRepo, tokenManager, csrfManager, google, timingDelay, logger, auditLogger)
	onboardingService := services.NewOnboardingService(profileRepo, logger)
	dashboardService := services.NewDashboardService(profileRepo, adminRepo, avatars, logger)
	directoryService := services.NewDirectoryService(profileRepo, avatars, m, logger)
	moderationService := services.NewModerationService(profileRepo, mailer, m, logger, auditLogger)
	adminService := services.NewAdminService(accountRepo, adminRepo, logger)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(authService, resolver, csrfManager, cookieConfig, ipConfig, logger)
	onboardingHandler := handlers.NewOnboardingHandler(onboardingService)
	memberHandler := handlers.NewMemberHandler(dashboardService, directoryService, logger)
	adminHandler := handlers.NewAdminHandler(moderationService, adminService, ipConfig)

	gate := access.NewGate(resolver, profileRepo, cfg.Auth.AccessFailMode, m, logger)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(cfg.Server.Env))
	router.Use(middlewareCustom.CORS(cfg.Server.AllowedOrigins))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(m.Middleware)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// Register routes
	routes.RegisterRoutes(router, routes.Dependencies{
		Auth:           authHandler,
		Onboarding:     onboardingHandler,
		Members:        memberHandler,
		Admin:          adminHandler,
		Gate:           gate,
		Resolver:       resolver,
		Admins:         adminService,
		CSRF:           csrfManager,
		Health:         db,
		Metrics:        m.Handler(),
		AuthRateLimit:  cfg.Auth.LoginRateLimit,
		AuthRateWindow: cfg.Auth.LoginRateWindow,
		Logger:         logger,
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      otelhttp.NewHandler(router, "alumninet"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start maintenance task
	maintenance := background.NewMaintenanceManager(profileRepo, purgerFor(memDenylist), m, logger, cfg.Server.MaintenanceInterval)
	maintenanceCtx, maintenanceCancel := context.WithCancel(context.Background())
	defer maintenanceCancel()

	go maintenance.Start(maintenanceCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	maintenance.Stop()
	maintenanceCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// purgerFor avoids handing the maintenance loop a typed nil.
func purgerFor(d *auth.MemoryDenylist) background.Purger {
	if d == nil {
		return nil
	}
	return d
}
