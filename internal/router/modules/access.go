package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/internal/container"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/authz"
	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
)

// Access is what a module needs to register bearer-protected routes.
type Access struct {
	JWT    middleware.TokenVerifier
	Matrix authz.Matrix
	Policy *middleware.Policy
}

// Protected returns a group under rg that requires a valid access token and
// enforces whatever rule Policy holds for the matched route.
func (a Access) Protected(rg *gin.RouterGroup) *gin.RouterGroup {
	g := rg.Group("")
	g.Use(
		middleware.JWTAuth(a.JWT),
		middleware.RoleGuard(a.Matrix, a.Policy),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	return g
}

// throttle is the short/medium/long per-IP limit applied to public auth routes.
func throttle() []gin.HandlerFunc {
	rdb := container.GetRedis()
	return []gin.HandlerFunc{
		middleware.RateLimit(rdb, 10, time.Second, middleware.KeyByIP(), nil),
		middleware.RateLimit(rdb, 100, 10*time.Second, middleware.KeyByIP(), nil),
		middleware.RateLimit(rdb, 500, time.Minute, middleware.KeyByIP(), nil),
	}
}
