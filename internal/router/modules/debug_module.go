package modules

import (
	"expvar"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/authz"
)

// DebugModule exposes expvar (auth event counters, memstats) to super admins.
type DebugModule struct {
	Access Access
}

func NewDebugModule(access Access) *DebugModule { return &DebugModule{Access: access} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	g := m.Access.Protected(rg)
	rule := authz.SuperAdminOnly().With(authz.CapSettingsManage)
	g.GET(m.Access.Policy.Guard(g, http.MethodGet, "/debug/vars", rule), gin.WrapH(expvar.Handler()))
}
