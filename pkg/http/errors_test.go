package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/alumninet/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorWithDetails(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteErrorWithDetails(w, http.StatusServiceUnavailable, "directory_unavailable", "The directory could not be loaded", "statement timeout")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "directory_unavailable", resp.Error)
	assert.Equal(t, "statement timeout", resp.Details)
}

func TestErrorWriters(t *testing.T) {
	tests := []struct {
		write  func(http.ResponseWriter, string)
		status int
		code   string
	}{
		{pkghttp.WriteBadRequest, http.StatusBadRequest, "bad_request"},
		{pkghttp.WriteUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{pkghttp.WriteForbidden, http.StatusForbidden, "forbidden"},
		{pkghttp.WriteNotFound, http.StatusNotFound, "not_found"},
		{pkghttp.WriteConflict, http.StatusConflict, "conflict"},
		{pkghttp.WriteTooManyRequests, http.StatusTooManyRequests, "rate_limit_exceeded"},
		{pkghttp.WriteInternalError, http.StatusInternalServerError, "internal_error"},
		{pkghttp.WriteServiceUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w, "message for "+tt.code)

			assert.Equal(t, tt.status, w.Code)
			var resp pkghttp.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, "message for "+tt.code, resp.Message)
			assert.Empty(t, resp.Details)
		})
	}
}
