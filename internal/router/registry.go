package router

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
)

// Registry collects modules and the middleware shared by every /api route.
// Policy is filled in by the modules while they register and read by
// RoleGuard afterwards.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	Policy      *middleware.Policy
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api, Policy: middleware.NewPolicy()}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
