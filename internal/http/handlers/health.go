package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports backend liveness; *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	env string
	db  Pinger
}

// NewHealthHandler creates the health handler. db may be nil when running
// without Postgres.
func NewHealthHandler(env string, db Pinger) *HealthHandler {
	return &HealthHandler{env: env, db: db}
}

// Health reports service status.
// GET /healthz
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, map[string]string{
		"status": status,
		"env":    h.env,
	})
}
