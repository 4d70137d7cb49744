package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/impostorgame/internal/api/response"
)

// HealthChecker reports whether a backing service is reachable
type HealthChecker func(ctx context.Context) error

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Health handles GET /api/v1/health. A nil checker always reports ok.
func Health(check HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				response.JSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: err.Error()})
				return
			}
		}
		response.JSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
