package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/qa-forum/backend/internal/config"
	"github.com/emilythestrangee/qa-forum/backend/internal/logger"
	"github.com/emilythestrangee/qa-forum/backend/internal/middleware"
	"github.com/emilythestrangee/qa-forum/backend/internal/store/storetest"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

type fakeHealth map[string]string

func (f fakeHealth) Health(context.Context) map[string]string { return f }

type denyAll struct{}

func (denyAll) Allow(context.Context, int) (bool, error) { return false, nil }

func testConfig() *config.Config {
	return &config.Config{
		Env:         "test",
		Port:        "0",
		JWTSecret:   "server-secret",
		CORSOrigins: []string{"*"},
		Tracing:     config.TracingConfig{ServiceName: "qa-forum-test"},
	}
}

func newTestServer(t *testing.T, deps Deps) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s, db := storetest.New(t)
	storetest.SeedUser(t, db, 1, "alice")
	storetest.SeedQuestion(t, db, 1, "first")

	deps.Service = voting.NewService(voting.ServiceDeps{Store: s})
	deps.Log = logger.Nop()
	srv := newServer(testConfig(), deps)
	return srv, srv.RegisterRoutes()
}

func TestNewServerAddr(t *testing.T) {
	s, _ := storetest.New(t)
	httpSrv := NewServer(testConfig(), Deps{Service: voting.NewService(voting.ServiceDeps{Store: s})})
	assert.Equal(t, "0.0.0.0:0", httpSrv.Addr)
	assert.NotNil(t, httpSrv.Handler)
}

func TestHealthEndpoint(t *testing.T) {
	_, r := newTestServer(t, Deps{Health: fakeHealth{"status": "up"}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	_, r = newTestServer(t, Deps{Health: fakeHealth{"status": "down"}})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRoutes(t *testing.T) {
	_, r := newTestServer(t, Deps{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/questions", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/questions/1/vote", strings.NewReader(`{"direction":"up"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "qaforum_http_requests_total")
}

func TestVoteRoutesAreRateLimited(t *testing.T) {
	_, r := newTestServer(t, Deps{Limiter: denyAll{}})
	token, err := middleware.SignToken("server-secret", 2, "bob", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/questions/1/vote", bytes.NewBufferString(`{"direction":"up"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"rate_limited"`)

	req = httptest.NewRequest(http.MethodGet, "/api/me/votes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
