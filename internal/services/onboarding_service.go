package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/BradenHooton/alumninet/internal/models"
)

// ProfileStore is the profile access onboarding and the dashboard need.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	SaveOnboarding(ctx context.Context, id string, u *models.OnboardingUpdate) (*models.Profile, error)
}

// OnboardingInput is the decoded onboarding form.
type OnboardingInput struct {
	FullName       string
	AvatarURL      string
	CountryCode    string
	Phone          string
	City           string
	Country        string
	GraduationYear int
	Degree         string
	Branch         string
	EmploymentType string
	Company        string
	Designation    string
	LinkedIn       string
	Interests      []string
	IsPublic       bool
	AcceptTerms    bool
	AcceptPrivacy  bool
}

// OnboardingOptions are the choices the form offers.
type OnboardingOptions struct {
	Degrees         []string             `json:"degrees"`
	Branches        []string             `json:"branches"`
	EmploymentTypes []string             `json:"employment_types"`
	Interests       []string             `json:"interests"`
	CountryCodes    []models.CountryCode `json:"country_codes"`
	MinYear         int                  `json:"min_year"`
	MaxYear         int                  `json:"max_year"`
	MaxInterests    int                  `json:"max_interests"`
}

// OnboardingForm pre-fills the form from whatever is already stored.
type OnboardingForm struct {
	FullName       string            `json:"full_name"`
	Email          string            `json:"email"`
	AvatarURL      string            `json:"avatar_url"`
	CountryCode    string            `json:"country_code"`
	Phone          string            `json:"phone"`
	City           string            `json:"city"`
	Country        string            `json:"country"`
	GraduationYear int               `json:"graduation_year"`
	Degree         string            `json:"degree"`
	Branch         string            `json:"branch"`
	EmploymentType string            `json:"employment_type"`
	Company        string            `json:"company"`
	Designation    string            `json:"designation"`
	LinkedIn       string            `json:"linkedin"`
	Interests      []string          `json:"interests"`
	IsPublic       bool              `json:"is_public"`
	Onboarded      bool              `json:"onboarded"`
	Options        OnboardingOptions `json:"options"`
}

// OnboardingService handles the member profile form
type OnboardingService struct {
	profiles ProfileStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewOnboardingService(profiles ProfileStore, logger *slog.Logger) *OnboardingService {
	return &OnboardingService{profiles: profiles, logger: logger, now: time.Now}
}

func (s *OnboardingService) options() OnboardingOptions {
	return OnboardingOptions{
		Degrees:         models.Degrees,
		Branches:        models.Branches,
		EmploymentTypes: models.EmploymentTypes,
		Interests:       models.Interests,
		CountryCodes:    models.CountryCodes,
		MinYear:         models.MinGraduationYear,
		MaxYear:         models.MaxGraduationYear(s.now()),
		MaxInterests:    models.MaxInterests,
	}
}

// Defaults builds the form for userID. A missing profile yields an empty
// form carrying the session email.
func (s *OnboardingService) Defaults(ctx context.Context, userID, email string) (*OnboardingForm, error) {
	form := &OnboardingForm{
		Email:          email,
		CountryCode:    models.DefaultCountryCode,
		GraduationYear: s.now().UTC().Year(),
		Interests:      []string{},
		IsPublic:       true,
		Options:        s.options(),
	}

	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return form, nil
		}
		s.logger.Error("failed to load profile", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if p.Email != "" {
		form.Email = p.Email
	}
	form.FullName = deref(p.FullName)
	form.AvatarURL = deref(p.AvatarURL)
	form.CountryCode, form.Phone = models.SplitE164(deref(p.PhoneE164))
	form.City = deref(p.City)
	form.Country = deref(p.Country)
	if p.GraduationYear != nil {
		form.GraduationYear = *p.GraduationYear
	}
	form.Degree = deref(p.Degree)
	form.Branch = deref(p.Branch)
	form.EmploymentType = deref(p.EmploymentType)
	form.Company = deref(p.Company)
	form.Designation = deref(p.Designation)
	form.LinkedIn = deref(p.LinkedIn)
	if p.Interests != nil {
		form.Interests = p.Interests
	}
	form.IsPublic = p.IsPublic
	form.Onboarded = p.Onboarded

	return form, nil
}

// Save validates and normalizes in, then stores it. Nothing is written when
// validation fails; the returned error is a *models.ValidationError.
func (s *OnboardingService) Save(ctx context.Context, userID, email string, in *OnboardingInput) (*models.Profile, error) {
	update, err := s.normalize(email, in)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.SaveOnboarding(ctx, userID, update)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			s.logger.Info("onboarding rejected by store", slog.String("user_id", userID), slog.Any("error", err))
			var fieldErr *models.ValidationError
			if errors.As(err, &fieldErr) {
				return nil, fieldErr
			}
			return nil, &models.ValidationError{Field: "profile", Message: "Some fields have invalid values"}
		}
		s.logger.Error("failed to save onboarding", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("profile onboarded", slog.String("user_id", userID))
	return profile, nil
}

func (s *OnboardingService) normalize(email string, in *OnboardingInput) (*models.OnboardingUpdate, error) {
	invalid := func(field, msg string) error {
		return &models.ValidationError{Field: field, Message: msg}
	}

	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return nil, invalid("full_name", "Full name is required")
	}
	if !in.AcceptTerms {
		return nil, invalid("accept_terms", "You must accept the terms of use")
	}
	if !in.AcceptPrivacy {
		return nil, invalid("accept_privacy", "You must accept the privacy policy")
	}

	phone, ok := models.AssembleE164(in.CountryCode, in.Phone)
	if !ok {
		return nil, invalid("phone", "Enter a valid phone number")
	}

	maxYear := models.MaxGraduationYear(s.now())
	if in.GraduationYear < models.MinGraduationYear || in.GraduationYear > maxYear {
		return nil, invalid("graduation_year",
			fmt.Sprintf("Graduation year must be between %d and %d", models.MinGraduationYear, maxYear))
	}

	if !slices.Contains(models.Degrees, in.Degree) {
		return nil, invalid("degree", "Select a degree from the list")
	}
	if !slices.Contains(models.Branches, in.Branch) {
		return nil, invalid("branch", "Select a branch from the list")
	}
	if !slices.Contains(models.EmploymentTypes, in.EmploymentType) {
		return nil, invalid("employment_type", "Select an employment type from the list")
	}

	interests := make([]string, 0, len(in.Interests))
	for _, it := range in.Interests {
		if !models.IsInterest(it) {
			return nil, invalid("interests", fmt.Sprintf("Unknown interest %q", it))
		}
		if !slices.Contains(interests, it) {
			interests = append(interests, it)
		}
	}
	if len(interests) > models.MaxInterests {
		return nil, invalid("interests", fmt.Sprintf("Choose at most %d interests", models.MaxInterests))
	}

	var linkedIn *string
	if v := models.NormalizeLinkedIn(in.LinkedIn); v != "" {
		linkedIn = &v
	}

	return &models.OnboardingUpdate{
		FullName:       fullName,
		Email:          email,
		AvatarURL:      optional(in.AvatarURL),
		PhoneE164:      phone,
		City:           optional(in.City),
		Country:        optional(in.Country),
		GraduationYear: in.GraduationYear,
		Degree:         in.Degree,
		Branch:         in.Branch,
		EmploymentType: in.EmploymentType,
		Company:        optional(in.Company),
		Designation:    optional(in.Designation),
		LinkedIn:       linkedIn,
		Interests:      interests,
		IsPublic:       in.IsPublic,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
