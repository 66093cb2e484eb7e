package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/alumninet/internal/metrics"
	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/BradenHooton/alumninet/internal/repositories"
	pkglogger "github.com/BradenHooton/alumninet/pkg/logger"
)

// ModerationStore is the profile access the review queue needs.
type ModerationStore interface {
	ListPending(ctx context.Context, limit int) ([]*models.PendingMember, error)
	SetModeration(ctx context.Context, profileID string, decision models.Moderation, actorID *string, source string) (*repositories.ModerationResult, error)
}

// DefaultPendingLimit caps the review queue.
const DefaultPendingLimit = 200

// ModerationService approves and rejects member profiles.
type ModerationService struct {
	store       ModerationStore
	mailer      Mailer
	metrics     *metrics.Metrics
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewModerationService(store ModerationStore, mailer Mailer, m *metrics.Metrics, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *ModerationService {
	return &ModerationService{
		store:       store,
		mailer:      mailer,
		metrics:     m,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// ListPending returns onboarded members awaiting review, oldest first.
func (s *ModerationService) ListPending(ctx context.Context, limit int) ([]*models.PendingMember, error) {
	if limit <= 0 || limit > DefaultPendingLimit {
		limit = DefaultPendingLimit
	}
	members, err := s.store.ListPending(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list pending members", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return members, nil
}

// Decide applies an approve or reject decision. Only approved and rejected
// are accepted. Concurrent decisions on one profile are last write wins.
// The member is emailed afterwards; a mail failure is logged, not returned.
func (s *ModerationService) Decide(ctx context.Context, profileID string, decision models.Moderation, actorID *string, source, ip string) (*repositories.ModerationResult, error) {
	if decision != models.ModerationApproved && decision != models.ModerationRejected {
		return nil, &models.ValidationError{Field: "decision", Message: "Decision must be approve or reject"}
	}

	result, err := s.store.SetModeration(ctx, profileID, decision, actorID, source)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to set moderation",
			slog.String("profile_id", profileID),
			slog.String("decision", string(decision)),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	actor := ""
	if actorID != nil {
		actor = *actorID
	}
	s.auditLogger.LogModeration(ctx, pkglogger.ModerationAudit{
		ActorID:   actor,
		ProfileID: profileID,
		Decision:  string(decision),
		Source:    source,
		IPAddress: ip,
	})
	s.metrics.ObserveModeration(string(decision), source)

	if s.mailer != nil {
		if err := s.mailer.SendModerationNotice(ctx, result.Email, deref(result.FullName), decision); err != nil {
			s.logger.Warn("moderation email not sent",
				slog.String("profile_id", profileID),
				slog.Any("error", err))
		}
	}

	return result, nil
}
