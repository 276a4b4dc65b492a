package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/qa-forum/backend/internal/logger"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", NewAuthMiddleware(testSecret).RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetInt(ContextUserID),
			"username": c.GetString(ContextUsername),
		})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	valid, err := SignToken(testSecret, 7, "alice", time.Hour)
	require.NoError(t, err)
	expired, err := SignToken(testSecret, 7, "alice", -time.Hour)
	require.NoError(t, err)
	wrongKey, err := SignToken("other", 7, "alice", time.Hour)
	require.NoError(t, err)
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"username": "x"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + valid, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong key", "Bearer " + wrongKey, http.StatusUnauthorized},
		{"no user id", "Bearer " + noUser, http.StatusUnauthorized},
	}
	r := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":7,"username":"alice"}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

type stubLimiter struct {
	allowed bool
	err     error
	calls   []int
}

func (s *stubLimiter) Allow(_ context.Context, userID int) (bool, error) {
	s.calls = append(s.calls, userID)
	return s.allowed, s.err
}

func newLimitedRouter(limiter VoteLimiter) *gin.Engine {
	r := gin.New()
	r.Use(LogAPI(logger.Nop()))
	r.POST("/vote",
		func(c *gin.Context) { c.Set(ContextUserID, 9); c.Next() },
		VoteRateLimit(limiter, logger.Nop()),
		func(c *gin.Context) { c.Status(http.StatusNoContent) },
	)
	return r
}

func TestVoteRateLimit(t *testing.T) {
	tests := []struct {
		name    string
		limiter *stubLimiter
		status  int
	}{
		{"allowed", &stubLimiter{allowed: true}, http.StatusNoContent},
		{"limited", &stubLimiter{allowed: false}, http.StatusTooManyRequests},
		{"limiter down fails open", &stubLimiter{err: errors.New("redis gone")}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newLimitedRouter(tt.limiter).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/vote", nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, []int{9}, tt.limiter.calls)
		})
	}

	w := httptest.NewRecorder()
	newLimitedRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/vote", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
