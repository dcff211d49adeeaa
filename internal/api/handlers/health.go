package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/lab-catalog/internal/catalog"
)

// StatusProvider reports the catalog loader state.
type StatusProvider interface {
	Status() catalog.Status
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	catalog StatusProvider
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(c StatusProvider) *HealthHandler {
	return &HealthHandler{catalog: c}
}

// Healthz returns 200 if the process is running.
//
// @Summary Liveness check
// @Description Returns 200 if the process is running.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /healthz [get]
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 once a catalog snapshot is published, 503 otherwise.
//
// @Summary Readiness check
// @Description Returns 200 once a catalog snapshot is published, 503 otherwise.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 503 {object} StatusResponse
// @Router /readyz [get]
func (h *HealthHandler) Readyz(c echo.Context) error {
	if !h.catalog.Status().Ready {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
