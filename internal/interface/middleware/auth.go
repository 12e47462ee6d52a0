package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
	"github.com/oksasatya/go-ddd-marketplace/pkg/response"
)

// Context keys set by JWTAuth.
const (
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
	CtxUserRoleKey  = "userRole"
)

// TokenVerifier is satisfied by *helpers.JWTManager.
type TokenVerifier interface {
	ParseAccessToken(token string) (*helpers.Claims, error)
}

// JWTAuth validates the bearer access token and stores the caller's identity
// in the Gin context. Verification is stateless; no store is consulted.
func JWTAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := v.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID())
		c.Set(CtxUserEmailKey, claims.Email)
		c.Set(CtxUserRoleKey, entity.Role(claims.Role))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Email  string
	Role   entity.Role
}

// IdentityFrom returns the identity set by JWTAuth, if any.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	uid := c.GetString(CtxUserIDKey)
	if uid == "" {
		return Identity{}, false
	}
	role, _ := c.Get(CtxUserRoleKey)
	r, _ := role.(entity.Role)
	return Identity{UserID: uid, Email: c.GetString(CtxUserEmailKey), Role: r}, true
}
