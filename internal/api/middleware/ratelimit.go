package middleware

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/waseem196/down-fb/internal/metrics"
	"github.com/waseem196/down-fb/internal/services/ratelimit"
	"github.com/waseem196/down-fb/internal/utils"
)

// RateLimitMiddleware admits requests through limiter, keyed by client address.
// Rejected requests never reach the handler.
func RateLimitMiddleware(limiter *ratelimit.Limiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ClientKey(c)
		decision := limiter.Admit(key)

		m.RecordAdmission(decision.Allowed)
		m.SetRateLimitKeys(limiter.Len())

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			utils.LogWarn(c.Request.Context(), "Rate limit exceeded", utils.Fields{
				"client":      key,
				"retry_after": decision.RetryAfter,
			})
			c.Header("Retry-After", strconv.Itoa(decision.RetryAfter))
			c.JSON(429, gin.H{
				"error":      utils.NewRateLimitError(decision.RetryAfter),
				"request_id": c.GetString("request_id"),
				"timestamp":  time.Now().Format(time.RFC3339),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ClientKey identifies the caller: first X-Forwarded-For hop, then X-Real-IP,
// then the connection's remote address.
func ClientKey(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(strings.TrimSpace(c.Request.RemoteAddr)); err == nil {
		return host
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
