package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/BradenHooton/alumninet/internal/access"
	"github.com/BradenHooton/alumninet/internal/auth"
	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/BradenHooton/alumninet/internal/services"
	pkghttp "github.com/BradenHooton/alumninet/pkg/http"
)

type OnboardingServiceInterface interface {
	Defaults(ctx context.Context, userID, email string) (*services.OnboardingForm, error)
	Save(ctx context.Context, userID, email string, in *services.OnboardingInput) (*models.Profile, error)
}

type OnboardingHandler struct {
	service OnboardingServiceInterface
}

func NewOnboardingHandler(service OnboardingServiceInterface) *OnboardingHandler {
	return &OnboardingHandler{service: service}
}

// OnboardingRequest is the profile form. Department is the old name of
// Branch and is only read when Branch is empty.
type OnboardingRequest struct {
	FullName       string   `json:"full_name" validate:"required,max=120"`
	AvatarURL      string   `json:"avatar_url" validate:"max=2048"`
	CountryCode    string   `json:"country_code" validate:"required,max=5"`
	Phone          string   `json:"phone" validate:"required,max=32"`
	City           string   `json:"city" validate:"max=120"`
	Country        string   `json:"country" validate:"max=120"`
	GraduationYear int      `json:"graduation_year" validate:"required"`
	Degree         string   `json:"degree" validate:"required"`
	Branch         string   `json:"branch"`
	Department     string   `json:"department"`
	EmploymentType string   `json:"employment_type" validate:"required"`
	Company        string   `json:"company" validate:"max=120"`
	Designation    string   `json:"designation" validate:"max=120"`
	LinkedIn       string   `json:"linkedin" validate:"max=300"`
	Interests      []string `json:"interests" validate:"max=6,dive,required"`
	IsPublic       *bool    `json:"is_public"`
	AcceptTerms    bool     `json:"accept_terms"`
	AcceptPrivacy  bool     `json:"accept_privacy"`
}

func (req *OnboardingRequest) toInput() *services.OnboardingInput {
	branch := strings.TrimSpace(req.Branch)
	if branch == "" {
		branch = strings.TrimSpace(req.Department)
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	return &services.OnboardingInput{
		FullName:       req.FullName,
		AvatarURL:      req.AvatarURL,
		CountryCode:    req.CountryCode,
		Phone:          req.Phone,
		City:           req.City,
		Country:        req.Country,
		GraduationYear: req.GraduationYear,
		Degree:         req.Degree,
		Branch:         branch,
		EmploymentType: req.EmploymentType,
		Company:        req.Company,
		Designation:    req.Designation,
		LinkedIn:       req.LinkedIn,
		Interests:      req.Interests,
		IsPublic:       isPublic,
		AcceptTerms:    req.AcceptTerms,
		AcceptPrivacy:  req.AcceptPrivacy,
	}
}

// OnboardingResponse points the client at the next page.
type OnboardingResponse struct {
	Onboarded  bool              `json:"onboarded"`
	Moderation models.Moderation `json:"moderation"`
	Redirect   string            `json:"redirect"`
}

// Get handles GET /onboarding
func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	form, err := h.service.Defaults(r.Context(), session.UserID, session.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, form)
}

// Save handles POST /onboarding. Nothing is written unless every field
// passes.
func (h *OnboardingHandler) Save(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req OnboardingRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteValidationError(w, "Validation failed", fields)
		return
	}

	profile, err := h.service.Save(r.Context(), session.UserID, session.Email, req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, OnboardingResponse{
		Onboarded:  profile.Onboarded,
		Moderation: profile.Moderation,
		Redirect:   access.DashboardPath,
	})
}
