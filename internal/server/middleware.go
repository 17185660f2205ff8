package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/faktura/internal/orgcontext"
	"go.uber.org/zap"
)

const orgHeader = "X-Org-ID"

// OrgContext resolves the owning organization for the request. The header
// wins; the configured default org covers single-tenant deployments.
func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := s.cfg.DefaultOrgID
		if raw := strings.TrimSpace(c.GetHeader(orgHeader)); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed <= 0 {
				AbortWithError(c, newValidationError("org_id", "invalid_org_id", "invalid org id"))
				return
			}
			orgID = parsed
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RateLimit throttles API requests per organization. Redis trouble fails
// open so an unreachable limiter never takes the API down with it.
func (s *Server) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		orgID, _ := orgcontext.OrgIDFromContext(c.Request.Context())
		allowed, err := s.limiter.AllowOrg(c.Request.Context(), orgID.String())
		if err != nil {
			_ = c.Error(err)
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
				Error: errorPayload{
					Type:    "rate_limited",
					Message: "too many requests",
				},
			})
			return
		}
		c.Next()
	}
}

// RequestLogger emits one access log line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	accessLog := log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			accessLog.Error("request", fields...)
		case c.Writer.Status() >= 400:
			accessLog.Warn("request", fields...)
		default:
			accessLog.Info("request", fields...)
		}
	}
}
