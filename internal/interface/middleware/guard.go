package middleware

import (
	"errors"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/authz"
	"github.com/oksasatya/go-ddd-marketplace/pkg/response"
)

// Policy maps "METHOD /full/route/path" to the rule guarding it. Rules are
// declared while routes are registered and only read afterwards.
type Policy struct {
	rules map[string]authz.Rule
}

func NewPolicy() *Policy {
	return &Policy{rules: map[string]authz.Rule{}}
}

func policyKey(method, fullPath string) string { return method + " " + fullPath }

// Set declares rule for a route given by its full path.
func (p *Policy) Set(method, fullPath string, rule authz.Rule) {
	p.rules[policyKey(method, fullPath)] = rule
}

// Guard declares rule for relPath under rg and returns relPath, so the call
// can sit inline in the route registration.
func (p *Policy) Guard(rg *gin.RouterGroup, method, relPath string, rule authz.Rule) string {
	full := path.Join(rg.BasePath(), relPath)
	p.Set(method, full, rule)
	return relPath
}

func (p *Policy) Rule(method, fullPath string) (authz.Rule, bool) {
	r, ok := p.rules[policyKey(method, fullPath)]
	return r, ok
}

// RoleGuard enforces the route's rule against the identity set by JWTAuth.
// Routes without a rule pass through. A missing identity is 401; a denial by
// the matrix is 403.
func RoleGuard(matrix authz.Matrix, policy *Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule, ok := policy.Rule(c.Request.Method, c.FullPath())
		if !ok {
			c.Next()
			return
		}
		id, ok := IdentityFrom(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		if err := matrix.Authorize(id.Role, rule); err != nil {
			msg := "insufficient permissions"
			if errors.Is(err, authz.ErrMissingCapability) {
				msg = "missing required permission"
			}
			response.Abort(c, http.StatusForbidden, msg, nil)
			return
		}
		c.Next()
	}
}
