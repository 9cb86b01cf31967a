package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/openimob/rentshare/internal/audit/auditcontext"
	"github.com/openimob/rentshare/internal/authcontext"
)

const (
	HeaderUserID = "X-User-Id"
	HeaderRole   = "X-User-Role"
)

// IdentityMiddleware resolves the caller identity supplied by the
// authenticating front proxy and stashes client details for audit
// writes. Requests without identity headers stay anonymous; route
// authorization rejects them where it matters.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		role := strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderRole)))
		if userID != "" && authcontext.ValidRole(role) {
			ctx = authcontext.WithIdentity(ctx, authcontext.Identity{
				UserID: userID,
				Role:   role,
			})
		}

		ctx = auditcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = auditcontext.WithUserAgent(ctx, c.Request.UserAgent())

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Authorize gates a route on the caller's role.
func (s *Server) Authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authzSvc.Authorize(c.Request.Context(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// record writes an audit entry for a completed mutation. Failures are
// already logged by the audit service and never fail the request.
func (s *Server) record(c *gin.Context, action, targetType string, targetID string, metadata map[string]any) {
	var target *string
	if strings.TrimSpace(targetID) != "" {
		target = &targetID
	}
	_ = s.auditSvc.Record(c.Request.Context(), action, targetType, target, metadata)
}
