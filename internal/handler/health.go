package handler

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidebet/platform/internal/infra"
)

// healthStatus is the GET /health response body.
type healthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthHandler reports liveness plus the state of the database the
// betting core settles against.
func HealthHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := healthStatus{
			Status: "healthy",
			Checks: map[string]string{"postgres": "up"},
		}
		if err := infra.HealthCheck(r.Context(), pool); err != nil {
			body.Status = "unhealthy"
			body.Checks["postgres"] = err.Error()
			RespondJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		RespondJSON(w, http.StatusOK, body)
	}
}
