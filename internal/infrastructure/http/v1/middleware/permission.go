package middleware

import (
	"github.com/gin-gonic/gin"

	"stockpulse/internal/core/apperror"
	appctx "stockpulse/internal/core/context"
)

// RequireScope middleware admits tokens carrying any of the given scopes.
// Must run after Auth.
func RequireScope(scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if appctx.GetUser(ctx) == nil {
			abortUnauthorized(c, "authentication required")
			return
		}

		for _, scope := range scopes {
			if appctx.HasScope(ctx, scope) {
				c.Next()
				return
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient scope").
				WithDetail("required_scopes", scopes),
		)
		c.Abort()
	}
}
