package middleware

import (
	"net/http"
	"time"

	"finance-tracker/internal/core/domain"
	"finance-tracker/internal/core/ports"
	"finance-tracker/pkg/apperror"
	"finance-tracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Context keys
	CtxUserID = "user_id"
	CtxOrgID  = "organization_id"
)

// JWTAuth creates a middleware that validates bearer tokens and stores the
// acting user and active organization in the request context.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		tokenStr := authHeader[7:]
		claims, err := tokenSvc.Validate(tokenStr)
		if err != nil {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		if claims.OrganizationID != nil {
			c.Set(CtxOrgID, *claims.OrganizationID)
		}
		c.Next()
	}
}

// ScopeFromContext rebuilds the request's data scope from the claims the
// auth middleware stored. A token without an organization claim yields the
// user's personal scope.
func ScopeFromContext(c *gin.Context) (domain.Scope, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return domain.Scope{}, false
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		return domain.Scope{}, false
	}

	if v, ok := c.Get(CtxOrgID); ok {
		if orgID, ok := v.(uuid.UUID); ok {
			return domain.OrgScope(userID, orgID), true
		}
	}
	return domain.PersonalScope(userID), true
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// MaxBodySize returns middleware that limits the request body size.
// Once the limit is exceeded the reader returns an error and the
// request is rejected with 413 Payload Too Large.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
