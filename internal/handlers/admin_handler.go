package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/BradenHooton/alumninet/internal/auth"
	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/BradenHooton/alumninet/internal/repositories"
	pkghttp "github.com/BradenHooton/alumninet/pkg/http"
)

// ModerationServiceInterface defines the moderation contract.
type ModerationServiceInterface interface {
	ListPending(ctx context.Context, limit int) ([]*models.PendingMember, error)
	Decide(ctx context.Context, profileID string, decision models.Moderation, actorID *string, source, ip string) (*repositories.ModerationResult, error)
}

// AdminListService lists the moderation allowlist.
type AdminListService interface {
	List(ctx context.Context) ([]*models.Admin, error)
}

// AdminHandler handles admin moderation HTTP requests.
type AdminHandler struct {
	moderation ModerationServiceInterface
	admins     AdminListService
	ipConfig   *pkghttp.IPConfig
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(moderation ModerationServiceInterface, admins AdminListService, ipConfig *pkghttp.IPConfig) *AdminHandler {
	return &AdminHandler{moderation: moderation, admins: admins, ipConfig: ipConfig}
}

// PendingResponse is the review queue.
type PendingResponse struct {
	Members []*models.PendingMember `json:"members"`
	Count   int                     `json:"count"`
}

// DecisionResponse echoes an applied moderation decision.
type DecisionResponse struct {
	ProfileID   string            `json:"profile_id"`
	Decision    models.Moderation `json:"decision"`
	ModeratedAt time.Time         `json:"moderated_at"`
}

// AdminEntry is one allowlisted account.
type AdminEntry struct {
	UserID    string    `json:"user_id"`
	GrantedAt time.Time `json:"granted_at"`
	GrantedBy *string   `json:"granted_by,omitempty"`
}

// ListPending handles GET /admin/members
// Accepts optional query param ?limit=N.
func (h *AdminHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	members, err := h.moderation.ListPending(r.Context(), limit)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to retrieve pending members")
		return
	}
	if members == nil {
		members = []*models.PendingMember{}
	}

	pkghttp.WriteJSON(w, http.StatusOK, PendingResponse{Members: members, Count: len(members)})
}

// Approve handles POST /admin/members/{id}/approve
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.ModerationApproved)
}

// Reject handles POST /admin/members/{id}/reject
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.ModerationRejected)
}

func (h *AdminHandler) decide(w http.ResponseWriter, r *http.Request, decision models.Moderation) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	profileID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(profileID); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid member id")
		return
	}

	actor := session.UserID
	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	result, err := h.moderation.Decide(r.Context(), profileID, decision, &actor, models.ModerationSourceAPI, ip)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, DecisionResponse{
		ProfileID:   result.ProfileID,
		Decision:    result.Decision,
		ModeratedAt: result.ModeratedAt,
	})
}

// ListAdmins handles GET /admin/admins
func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to retrieve admins")
		return
	}

	out := make([]AdminEntry, 0, len(admins))
	for _, a := range admins {
		out = append(out, AdminEntry{UserID: a.UserID, GrantedAt: a.GrantedAt, GrantedBy: a.GrantedBy})
	}
	pkghttp.WriteJSON(w, http.StatusOK, out)
}
