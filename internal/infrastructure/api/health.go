package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// RegisterHealthRoutes registers health check endpoints.
// these are public and don't require authentication.
func RegisterHealthRoutes(e *echo.Echo, ready func(c echo.Context) error) {
	e.GET("/health", healthHandler)
	e.GET("/ready", readyHandlerFor(ready))
}

// healthHandler returns the basic health status.
// used for liveness probes.
func healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: "tgstats",
	})
}

// readyHandlerFor builds the readiness handler.
// the ready func checks downstream dependencies (database connectivity).
func readyHandlerFor(ready func(c echo.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ready != nil {
			if err := ready(c); err != nil {
				return c.JSON(http.StatusServiceUnavailable, HealthResponse{
					Status:  "unavailable",
					Service: "tgstats",
				})
			}
		}
		return c.JSON(http.StatusOK, HealthResponse{
			Status:  "ready",
			Service: "tgstats",
		})
	}
}
