package api_v1

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// Slugs outside the catalog must be rejected before the installer runs, with
// a client error rather than a 500.
func TestApplyUpdateRejectsUnknownSlug(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/admin/updates/apply/:slug", ApplyUpdate)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/updates/apply/not-in-catalog", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown slug must be a client error, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not a managed product") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestInstallRejectsRepoMismatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/admin/install", InstallProduct)

	body := strings.NewReader(`{"slug":"ps-chat","repo":"evil/widget"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/install", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("mismatched repo must be a client error, got %d", w.Code)
	}
}
