package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/BradenHooton/alumninet/internal/models"
)

// AvatarResolver maps stored avatar references to loadable URLs.
type AvatarResolver interface {
	Resolve(ctx context.Context, ref *string) (*string, error)
}

// AdminLookup reports allowlist membership.
type AdminLookup interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// DashboardView is the member's landing document.
type DashboardView struct {
	UserID          string            `json:"user_id"`
	FullName        string            `json:"full_name"`
	Email           string            `json:"email"`
	AvatarURL       *string           `json:"avatar_url"`
	IsAdmin         bool              `json:"is_admin"`
	Onboarded       bool              `json:"onboarded"`
	Moderation      models.Moderation `json:"moderation"`
	Notice          string            `json:"notice,omitempty"`
	Completion      int               `json:"completion"`
	MissingRequired []string          `json:"missing_required"`
	MissingOptional []string          `json:"missing_optional"`
}

type DashboardService struct {
	profiles ProfileStore
	admins   AdminLookup
	avatars  AvatarResolver
	logger   *slog.Logger
}

func NewDashboardService(profiles ProfileStore, admins AdminLookup, avatars AvatarResolver, logger *slog.Logger) *DashboardService {
	return &DashboardService{profiles: profiles, admins: admins, avatars: avatars, logger: logger}
}

// Get assembles the dashboard for userID. Avatar and admin lookups are best
// effort; only a failed profile read fails the request.
func (s *DashboardService) Get(ctx context.Context, userID, email, notice string) (*DashboardView, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to load profile", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	view := &DashboardView{
		UserID:     p.ID,
		FullName:   deref(p.FullName),
		Email:      p.Email,
		Onboarded:  p.Onboarded,
		Moderation: p.Moderation,
		Notice:     notice,
	}
	if view.Email == "" {
		view.Email = email
	}

	view.Completion, view.MissingRequired, view.MissingOptional = Completion(p)

	if s.avatars != nil {
		if url, err := s.avatars.Resolve(ctx, p.AvatarURL); err != nil {
			s.logger.Warn("failed to resolve avatar", slog.String("user_id", userID), slog.Any("error", err))
		} else {
			view.AvatarURL = url
		}
	}

	isAdmin, err := s.admins.IsAdmin(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to check admin allowlist", slog.String("user_id", userID), slog.Any("error", err))
	}
	view.IsAdmin = isAdmin

	return view, nil
}

// Completion scores the profile. Required fields are full name, degree and
// branch; every other tracked field is optional. Each counts equally.
func Completion(p *models.Profile) (percent int, missingRequired, missingOptional []string) {
	required := []struct {
		name   string
		filled bool
	}{
		{"full_name", nonEmpty(p.FullName)},
		{"degree", nonEmpty(p.Degree)},
		{"branch", nonEmpty(p.Branch)},
	}
	optionalFields := []struct {
		name   string
		filled bool
	}{
		{"graduation_year", p.GraduationYear != nil},
		{"company", nonEmpty(p.Company)},
		{"designation", nonEmpty(p.Designation)},
		{"city", nonEmpty(p.City)},
		{"phone", nonEmpty(p.PhoneE164)},
		{"linkedin", nonEmpty(p.LinkedIn)},
		{"interests", len(p.Interests) > 0},
	}

	missingRequired = []string{}
	missingOptional = []string{}
	filled := 0
	for _, f := range required {
		if f.filled {
			filled++
		} else {
			missingRequired = append(missingRequired, f.name)
		}
	}
	for _, f := range optionalFields {
		if f.filled {
			filled++
		} else {
			missingOptional = append(missingOptional, f.name)
		}
	}

	total := len(required) + len(optionalFields)
	percent = (filled*100 + total/2) / total
	return percent, missingRequired, missingOptional
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}
