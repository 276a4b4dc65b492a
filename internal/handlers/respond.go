package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/qa-forum/backend/internal/logger"
	"github.com/emilythestrangee/qa-forum/backend/internal/middleware"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

var statusByCode = map[voting.ErrorCode]int{
	voting.CodeValidation:        http.StatusBadRequest,
	voting.CodeUnauthorized:      http.StatusUnauthorized,
	voting.CodeForbidden:         http.StatusForbidden,
	voting.CodeSelfVoteForbidden: http.StatusForbidden,
	voting.CodeNotFound:          http.StatusNotFound,
	voting.CodeConflict:          http.StatusConflict,
}

// respondError writes the coded error as {"error","code"}. Internal failures
// are logged and reported without detail.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	code := voting.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		log.Error("request failed", "path", c.FullPath(), "request_id", c.GetString(middleware.ContextRequestID), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": string(voting.CodeInternal)})
		return
	}
	c.JSON(status, gin.H{"error": voting.Message(err), "code": string(code)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": string(voting.CodeValidation)})
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get(middleware.ContextUserID)
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, v > 0
	case uint:
		return int(v), v > 0
	case float64:
		return int(v), v > 0
	default:
		return 0, false
	}
}

// currentUser builds the author profile from the verified token claims.
func currentUser(c *gin.Context) (models.User, bool) {
	id, ok := extractUserID(c)
	if !ok {
		return models.User{}, false
	}
	username := c.GetString(middleware.ContextUsername)
	if username == "" {
		username = "user" + strconv.Itoa(id)
	}
	return models.User{ID: id, Username: username}, true
}

// parseID reads a positive integer path parameter. Malformed ids cannot name
// an existing entity, so they are reported as not found.
func parseID(c *gin.Context, param, entity string) (int, bool) {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found", "code": string(voting.CodeNotFound)})
		return 0, false
	}
	return id, true
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated", "code": string(voting.CodeUnauthorized)})
}
