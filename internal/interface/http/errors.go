package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-marketplace/internal/application"
	"github.com/oksasatya/go-ddd-marketplace/pkg/response"
)

// writeError maps application error kinds to HTTP statuses. Anything else is
// an internal error and its detail stays in the logs.
func writeError(c *gin.Context, err error) {
	var appErr *application.Error
	if !errors.As(err, &appErr) {
		response.Error[any](c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, application.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, application.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, application.ErrNotFound):
		status = http.StatusNotFound
	}
	response.Error[any](c, status, appErr.Message, nil)
}
