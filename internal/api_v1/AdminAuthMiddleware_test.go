package api_v1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/psource-dev/psman/internal/conf"
)

func authTestRouter(apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	conf.Conf = &conf.Config{Admin: conf.Admin{ApiKey: apiKey}}
	r := gin.New()
	r.GET("/api/admin/ping", AdminAuthMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func doGet(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth(t *testing.T) {
	r := authTestRouter("secret-key")

	if w := doGet(r, "secret-key"); w.Code != http.StatusOK {
		t.Errorf("valid key rejected: %d", w.Code)
	}
	if w := doGet(r, "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("invalid key accepted: %d", w.Code)
	}
	if w := doGet(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing key accepted: %d", w.Code)
	}
}

func TestAdminAuthFailsClosedWithoutConfiguredKey(t *testing.T) {
	r := authTestRouter("")
	if w := doGet(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("unconfigured key must lock admin routes: %d", w.Code)
	}
	if w := doGet(r, "anything"); w.Code != http.StatusUnauthorized {
		t.Errorf("unconfigured key must lock admin routes: %d", w.Code)
	}
}
