package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-marketplace/internal/application"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
	"github.com/oksasatya/go-ddd-marketplace/pkg/response"
	"github.com/oksasatya/go-ddd-marketplace/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,personname"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,pwd"`
}

type authPayload struct {
	User         entity.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

type tokensPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type messagePayload struct {
	Message string `json:"message"`
}

func expiryMeta(p helpers.TokenPair) map[string]any {
	return map[string]any{
		"access_expires_at":  p.AccessTokenExpiry,
		"refresh_expires_at": p.RefreshTokenExpiry,
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, authPayload{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, "registration successful", expiryMeta(res.Tokens))
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, authPayload{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, "login successful", expiryMeta(res.Tokens))
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusUnauthorized, application.MsgInvalidRefreshToken, validation.ToDetails(err))
		return
	}
	pair, err := h.Svc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tokensPayload{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "token refreshed", expiryMeta(pair))
}

// ChangePassword POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	msg, err := h.Svc.ChangePassword(c.Request.Context(), id.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, messagePayload{Message: msg}, msg, nil)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	msg, err := h.Svc.Logout(c.Request.Context(), id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, messagePayload{Message: msg}, msg, nil)
}
