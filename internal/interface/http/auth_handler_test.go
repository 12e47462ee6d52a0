package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ddd-marketplace/internal/application"
	"github.com/oksasatya/go-ddd-marketplace/internal/domain/authz"
	"github.com/oksasatya/go-ddd-marketplace/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-marketplace/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
	"github.com/oksasatya/go-ddd-marketplace/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type testAPI struct {
	router *gin.Engine
	repo   *memory.UserRepository
}

func newTestAPI(t *testing.T) testAPI {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := memory.NewUserRepository()
	jwt := helpers.NewJWTManager("access", "refresh", time.Hour, 24*time.Hour)
	matrix := authz.DefaultMatrix()
	authSvc := application.NewAuthService(repo, jwt, helpers.NewPasswordHasher(bcrypt.MinCost), nil, logger, application.AuthOptions{EnableRegistration: true})
	userSvc := application.NewUserService(repo, matrix, nil, nil, logger, 1024)

	ah := NewAuthHandler(authSvc, logger)
	uh := NewUserHandler(userSvc, logger)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	api := r.Group("/api")
	api.POST("/auth/register", ah.Register)
	api.POST("/auth/login", ah.Login)
	api.POST("/auth/refresh", ah.Refresh)

	policy := middleware.NewPolicy()
	protected := api.Group("")
	protected.Use(middleware.JWTAuth(jwt), middleware.RoleGuard(matrix, policy))
	protected.POST("/auth/change-password", ah.ChangePassword)
	protected.POST("/auth/logout", ah.Logout)
	protected.GET("/users/me", uh.Me)
	protected.GET("/users/me/permissions", uh.Permissions)
	protected.GET(policy.Guard(protected, http.MethodGet, "/users/search", authz.SuperAdminOnly().With(authz.CapUserManage)), uh.Search)

	return testAPI{router: r, repo: repo}
}

func (a testAPI) call(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode body %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, env
}

type authData struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return v
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.call(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Nina", "email": "nina@example.com", "password": "secret123",
	})
	if code != http.StatusCreated || !env.Success {
		t.Fatalf("register = %d %+v", code, env)
	}
	reg := decode[authData](t, env.Data)
	if reg.User.Role != "BUYER" || reg.AccessToken == "" || reg.RefreshToken == "" {
		t.Fatalf("register data = %+v", reg)
	}
	if bytes.Contains(env.Data, []byte("password")) {
		t.Fatalf("response leaks password: %s", env.Data)
	}

	code, env = api.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nina@example.com", "password": "secret123",
	})
	if code != http.StatusOK {
		t.Fatalf("login = %d %+v", code, env)
	}
	login := decode[authData](t, env.Data)
	if login.User.ID != reg.User.ID {
		t.Fatalf("login id %q != %q", login.User.ID, reg.User.ID)
	}

	code, env = api.call(t, http.MethodGet, "/api/users/me", login.AccessToken, nil)
	if code != http.StatusOK {
		t.Fatalf("me = %d %+v", code, env)
	}

	code, env = api.call(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": login.RefreshToken})
	if code != http.StatusOK {
		t.Fatalf("refresh = %d %+v", code, env)
	}
	tokens := decode[authData](t, env.Data)
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("refresh data = %s", env.Data)
	}

	code, env = api.call(t, http.MethodPost, "/api/auth/change-password", tokens.AccessToken, map[string]string{
		"currentPassword": "secret123", "newPassword": "brand-new-1",
	})
	if code != http.StatusOK || env.Message != application.MsgPasswordChanged {
		t.Fatalf("change-password = %d %+v", code, env)
	}

	code, env = api.call(t, http.MethodPost, "/api/auth/logout", tokens.AccessToken, nil)
	if code != http.StatusOK || env.Message != application.MsgLoggedOut {
		t.Fatalf("logout = %d %+v", code, env)
	}
}

func TestRegisterErrors(t *testing.T) {
	api := newTestAPI(t)
	body := map[string]string{"name": "Omar", "email": "omar@example.com", "password": "secret123"}
	if code, _ := api.call(t, http.MethodPost, "/api/auth/register", "", body); code != http.StatusCreated {
		t.Fatalf("first register = %d", code)
	}

	code, env := api.call(t, http.MethodPost, "/api/auth/register", "", body)
	if code != http.StatusConflict || env.Message != application.MsgEmailTaken {
		t.Fatalf("duplicate = %d %+v", code, env)
	}

	code, env = api.call(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "O", "email": "bad", "password": "1"})
	if code != http.StatusBadRequest {
		t.Fatalf("invalid = %d %+v", code, env)
	}
	details := decode[map[string]string](t, env.Error)
	for _, f := range []string{"name", "email", "password"} {
		if details[f] == "" {
			t.Errorf("missing detail for %s: %v", f, details)
		}
	}
}

func TestLoginErrorsLookTheSame(t *testing.T) {
	api := newTestAPI(t)
	api.call(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Pia", "email": "pia@example.com", "password": "secret123"})

	c1, e1 := api.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "pia@example.com", "password": "wrong-pass"})
	c2, e2 := api.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "secret123"})
	if c1 != http.StatusUnauthorized || c2 != http.StatusUnauthorized {
		t.Fatalf("codes = %d, %d", c1, c2)
	}
	if e1.Message != e2.Message || e1.Message != application.MsgInvalidCredentials {
		t.Fatalf("messages differ: %q vs %q", e1.Message, e2.Message)
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	api := newTestAPI(t)
	code, env := api.call(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": "x.y.z"})
	if code != http.StatusUnauthorized || env.Message != application.MsgInvalidRefreshToken {
		t.Fatalf("refresh = %d %+v", code, env)
	}
}

func TestProtectedRoutes(t *testing.T) {
	api := newTestAPI(t)
	if code, _ := api.call(t, http.MethodGet, "/api/users/me", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("me without token = %d", code)
	}

	_, env := api.call(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Quinn", "email": "quinn@example.com", "password": "secret123"})
	reg := decode[authData](t, env.Data)

	code, env := api.call(t, http.MethodGet, "/api/users/me/permissions", reg.AccessToken, nil)
	if code != http.StatusOK {
		t.Fatalf("permissions = %d", code)
	}
	perms := decode[application.PermissionsView](t, env.Data)
	if perms.Role != "BUYER" || perms.Level != 1 || perms.Access["seller"] {
		t.Fatalf("permissions = %+v", perms)
	}

	if code, _ := api.call(t, http.MethodGet, "/api/users/search?q=a", reg.AccessToken, nil); code != http.StatusForbidden {
		t.Fatalf("buyer search = %d, want 403", code)
	}
}
