package middleware

import (
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/autolog-org/autolog-backend/internal/logger"
  "github.com/autolog-org/autolog-backend/internal/requestdata"
)

// RequestContext tags every request with an id and the client IP. The flows
// here are open endpoints, so this is the only per-request identity we have.
func RequestContext(log *logger.Logger) gin.HandlerFunc {
  mwLog := log.With("middleware", "RequestContext")
  return func(c *gin.Context) {
    rd := &requestdata.RequestData{
      RequestID: uuid.New(),
      ClientIP:  c.ClientIP(),
    }
    ctx := requestdata.WithRequestData(c.Request.Context(), rd)
    c.Request = c.Request.WithContext(ctx)
    mwLog.Debug("Request tagged", "requestID", rd.RequestID, "clientIP", rd.ClientIP, "path", c.FullPath())
    c.Next()
  }
}
