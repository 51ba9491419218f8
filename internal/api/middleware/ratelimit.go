package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devfikr/subpolish/internal/ratelimit"
	"github.com/devfikr/subpolish/internal/utils"
)

type rateLimitError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

// RateLimit denies requests over the client's window budget. Runs after
// ClientIdentity so "client_id" is always set.
func RateLimit(l *ratelimit.Limiter, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetString("client_id")
		if clientID == "" {
			clientID = "ip:" + c.ClientIP()
		}

		ok, err := l.Allow(c.Request.Context(), clientID)
		if err != nil {
			// a broken store must not take the service down with it
			log.WithFields(logrus.Fields{
				"client_id": clientID,
				"error":     err.Error(),
			}).Error("rate limit store failure, admitting request")
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, rateLimitError{
				Code: utils.CodeRateLimited,
				Message: fmt.Sprintf("Rate limit exceeded: max %d requests per %s",
					l.Max(), l.Window()),
			})
			return
		}
		c.Next()
	}
}
