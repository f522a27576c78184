package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"QuantPulse/pkg/config"
)

type healthHandler struct {
	cfg *config.Config
}

func newHealthHandler(cfg *config.Config) *healthHandler {
	return &healthHandler{cfg: cfg}
}

// RegisterRoutes wires the liveness endpoint.
func (h *healthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":      "ok",
			"environment": h.cfg.Environment,
		})
	})
}
