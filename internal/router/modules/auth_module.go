package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/internal/container"
	handlers "github.com/oksasatya/go-ddd-marketplace/internal/interface/http"
	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
)

// AuthModule serves /auth.
// Public: register, login, refresh. Bearer: change-password, logout.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Access  Access
}

func NewAuthModule(h *handlers.AuthHandler, access Access) *AuthModule {
	return &AuthModule{Handler: h, Access: access}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	credentialLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	public := rg.Group("/auth")
	public.Use(throttle()...)
	public.Use(middleware.MaxBodyBytes(64 << 10))
	{
		public.POST("/register", credentialLimiter, m.Handler.Register)
		public.POST("/login", credentialLimiter, m.Handler.Login)
		public.POST("/refresh", m.Handler.Refresh)
	}

	auth := m.Access.Protected(rg.Group("/auth"))
	auth.Use(middleware.MaxBodyBytes(64 << 10))
	{
		auth.POST("/change-password", credentialLimiter, m.Handler.ChangePassword)
		auth.POST("/logout", m.Handler.Logout)
	}
}
