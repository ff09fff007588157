package middleware

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/autolog-org/autolog-backend/internal/logger"
  "github.com/autolog-org/autolog-backend/internal/ratelimit"
  "github.com/autolog-org/autolog-backend/internal/requestdata"
)

type RateLimitMiddleware struct {
  log     *logger.Logger
  limiter ratelimit.Limiter
}

func NewRateLimitMiddleware(log *logger.Logger, limiter ratelimit.Limiter) *RateLimitMiddleware {
  mwLog := log.With("middleware", "RateLimitMiddleware")
  return &RateLimitMiddleware{log: mwLog, limiter: limiter}
}

// LimitByClientIP gates a route per source IP. The verification service adds
// its own per-plate check; this one stops a single client from spraying many
// plates.
func (rlm *RateLimitMiddleware) LimitByClientIP() gin.HandlerFunc {
  return func(c *gin.Context) {
    ip := c.ClientIP()
    if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil && rd.ClientIP != "" {
      ip = rd.ClientIP
    }
    allowed, err := rlm.limiter.Allow(c.Request.Context(), "ip:"+ip)
    if err != nil {
      rlm.log.Warn("Rate limiter errored, allowing request", "error", err, "clientIP", ip)
      c.Next()
      return
    }
    if !allowed {
      c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
      return
    }
    c.Next()
  }
}
