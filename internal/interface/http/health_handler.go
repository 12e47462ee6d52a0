package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/pkg/response"
)

type HealthHandler struct {
	Env     string
	started time.Time
}

func NewHealthHandler(env string) *HealthHandler {
	return &HealthHandler{Env: env, started: time.Now()}
}

type healthPayload struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      float64   `json:"uptime"`
	Environment string    `json:"environment"`
}

// Health GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, healthPayload{
		Status:      "OK",
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.started).Seconds(),
		Environment: h.Env,
	}, "healthy", nil)
}
