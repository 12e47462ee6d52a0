package router

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

	"github.com/oksasatya/go-ddd-marketplace/config"
	"github.com/oksasatya/go-ddd-marketplace/internal/container"
	"github.com/oksasatya/go-ddd-marketplace/pkg/validation"
)

func newTestEngine(t *testing.T, mutate func(*config.Config)) (*gin.Engine, *Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	container.Reset()
	t.Cleanup(container.Reset)

	cfg := &config.Config{
		Env:                 "test",
		JWTAccessSecret:     "access-secret",
		JWTRefreshSecret:    "refresh-secret",
		AccessTTL:           time.Hour,
		RefreshTTL:          24 * time.Hour,
		BcryptCost:          bcrypt.MinCost,
		MaxLoginAttempts:    5,
		LockoutTime:         time.Minute,
		EnableRegistration:  true,
		UploadMaxFileSize:   1 << 20,
		DebugMetricsEnabled: true,
	}
	if mutate != nil {
		mutate(cfg)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	container.SetConfig(cfg)
	container.SetLogger(logger)

	r := gin.New()
	reg := NewRegistry(r)
	InitModules(reg)
	reg.RegisterAll()
	return r, reg
}

func do(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
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
	r.ServeHTTP(w, req)
	return w
}

func TestInitModules_Routes(t *testing.T) {
	r, _ := newTestEngine(t, nil)

	if w := do(r, http.MethodGet, "/api/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("health = %d %s", w.Code, w.Body.String())
	}

	w := do(r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Rita", "email": "rita@example.com", "password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register = %d %s", w.Code, w.Body.String())
	}
	var env struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	token := env.Data.AccessToken

	cases := []struct {
		path  string
		token string
		want  int
	}{
		{"/api/users/me", token, http.StatusOK},
		{"/api/users/me", "", http.StatusUnauthorized},
		{"/api/users/me/permissions", token, http.StatusOK},
		{"/api/users/search?q=rita", token, http.StatusForbidden},
		{"/api/debug/vars", token, http.StatusForbidden},
		{"/api/debug/vars", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		if w := do(r, http.MethodGet, tc.path, tc.token, nil); w.Code != tc.want {
			t.Errorf("GET %s = %d, want %d", tc.path, w.Code, tc.want)
		}
	}
}

func TestInitModules_DeclaresPolicies(t *testing.T) {
	_, reg := newTestEngine(t, nil)
	for _, p := range []string{"/api/users/search", "/api/debug/vars"} {
		if _, ok := reg.Policy.Rule(http.MethodGet, p); !ok {
			t.Errorf("no rule declared for %s", p)
		}
	}
	if _, ok := reg.Policy.Rule(http.MethodGet, "/api/users/me"); ok {
		t.Errorf("/api/users/me should only need a token")
	}
}

func TestInitModules_DebugDisabled(t *testing.T) {
	r, _ := newTestEngine(t, func(c *config.Config) { c.DebugMetricsEnabled = false })
	if w := do(r, http.MethodGet, "/api/debug/vars", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("debug vars = %d, want 404", w.Code)
	}
}

func TestInitModules_RegistrationDisabled(t *testing.T) {
	r, _ := newTestEngine(t, func(c *config.Config) { c.EnableRegistration = false })
	w := do(r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Sam", "email": "sam@example.com", "password": "secret123",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("register = %d, want 400", w.Code)
	}
}
