package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/alumninet/internal/access"
	"github.com/BradenHooton/alumninet/internal/auth"
	"github.com/BradenHooton/alumninet/internal/directory"
	"github.com/BradenHooton/alumninet/internal/models"
	"github.com/BradenHooton/alumninet/internal/services"
	pkghttp "github.com/BradenHooton/alumninet/pkg/http"
)

type DashboardServiceInterface interface {
	Get(ctx context.Context, userID, email, notice string) (*services.DashboardView, error)
}

type DirectoryServiceInterface interface {
	Search(ctx context.Context, f directory.Filters) (*services.DirectoryResult, error)
}

// MemberHandler serves the member-only pages behind the access gate.
type MemberHandler struct {
	dashboard DashboardServiceInterface
	directory DirectoryServiceInterface
	logger    *slog.Logger
}

func NewMemberHandler(dashboard DashboardServiceInterface, directory DirectoryServiceInterface, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{dashboard: dashboard, directory: directory, logger: logger}
}

// Dashboard handles GET /dashboard
func (h *MemberHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	// A not-approved notice from an old redirect is stale once the gate has
	// seen the member approved.
	notice := r.URL.Query().Get("notice")
	if facts, ok := access.FactsFromContext(r.Context()); ok && facts.Approved && notice == access.NoticeNotApproved {
		notice = ""
	}

	view, err := h.dashboard.Get(r.Context(), session.UserID, session.Email, notice)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, view)
}

// Directory handles GET /directory. A failed query is a 503 whose details
// carry the store's message; the page shows it instead of the listing.
func (h *MemberHandler) Directory(w http.ResponseWriter, r *http.Request) {
	filters := directory.ParseFilters(r.URL.Query())

	result, err := h.directory.Search(r.Context(), filters)
	if err != nil {
		var qe *models.DirectoryQueryError
		if errors.As(err, &qe) {
			h.logger.ErrorContext(r.Context(), "directory query failed", slog.Any("error", err))
			pkghttp.WriteErrorWithDetails(w, http.StatusServiceUnavailable, "directory_unavailable",
				"The directory could not be loaded", qe.Message)
			return
		}
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, result)
}
