package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/qa-forum/backend/internal/logger"
)

// VoteLimiter decides whether a user may cast another vote right now.
type VoteLimiter interface {
	Allow(ctx context.Context, userID int) (bool, error)
}

// VoteRateLimit rejects votes over the per-user limit with 429. It must run
// after RequireAuth. A nil limiter disables the check; limiter failures are
// logged and the request is let through.
func VoteRateLimit(limiter VoteLimiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		userID := c.GetInt(ContextUserID)
		if userID <= 0 {
			abortUnauthorized(c, "user not authenticated")
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), userID)
		if err != nil {
			log.Warn("vote rate limit check failed, allowing request", "user_id", userID, "error", err)
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many votes, slow down",
				"code":  "rate_limited",
			})
			return
		}
		c.Next()
	}
}
