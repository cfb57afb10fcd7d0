package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness endpoints.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler constructs a HealthHandler. db may be nil.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Root handles GET /.
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "SIFT API is running"})
}

// Healthz handles GET /healthz.
func (h *HealthHandler) Healthz(c echo.Context) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			return Error(c, http.StatusServiceUnavailable, "database unavailable")
		}
	}
	return Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
}
