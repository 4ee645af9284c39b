package v1

import (
	"github.com/gin-gonic/gin"

	"stockpulse/internal/infrastructure/http/v1/middleware"
)

// RouteRegistrar is implemented by handlers that own a route group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RegisterScopedRoutes mounts the handler's routes under path, admitting only
// tokens that carry one of the given scopes.
//
// Usage:
//
//	handler := handlers.NewSaleHandler(baseHandler, cfg.Lots)
//	RegisterScopedRoutes(protected, "/sales", handler, auth.ScopeAPI)
func RegisterScopedRoutes(rg *gin.RouterGroup, path string, handler RouteRegistrar, scopes ...string) {
	group := rg.Group(path)
	group.Use(middleware.RequireScope(scopes...))
	handler.RegisterRoutes(group)
}
