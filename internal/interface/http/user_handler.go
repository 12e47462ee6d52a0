package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-marketplace/internal/application"
	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-marketplace/pkg/response"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	u, err := h.Svc.Profile(c.Request.Context(), id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile", nil)
}

// Permissions GET /api/users/me/permissions
func (h *UserHandler) Permissions(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	response.Success(c, http.StatusOK, h.Svc.Permissions(id.Role), "permissions", nil)
}

// UploadAvatar PUT /api/users/me/avatar (multipart field "avatar")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"avatar": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"avatar": "unreadable file"})
		return
	}
	defer func() { _ = f.Close() }()

	u, err := h.Svc.UploadAvatar(c.Request.Context(), id.UserID, f, fh.Header.Get("Content-Type"), fh.Size)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "avatar updated", nil)
}

// Search GET /api/users/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	docs, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, docs, "users", map[string]any{"count": len(docs)})
}
