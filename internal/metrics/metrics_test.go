package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveAccess(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAccess("directory", "redirect_dashboard")
	m.ObserveAccess("directory", "redirect_dashboard")
	m.ObserveAccess("dashboard", "allow")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AccessDecisions.WithLabelValues("directory", "redirect_dashboard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessDecisions.WithLabelValues("dashboard", "allow")))
}

func TestObserve_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAccess("dashboard", "allow")
	m.ObserveDirectory(time.Now(), nil)
	m.ObserveModeration("approved", "api")
}

func TestObserveDirectory(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveDirectory(time.Now(), nil)
	m.ObserveDirectory(time.Now(), errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DirectoryQueries.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DirectoryQueries.WithLabelValues("error")))
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Post("/admin/members/{id}/approve", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/members/"+id+"/approve", nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.HTTPRequests.WithLabelValues("POST", "/admin/members/{id}/approve", "204")))
}

func TestHandler_Exposes(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveModeration("approved", "cli")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "alumninet_moderation_decisions_total"))
}
