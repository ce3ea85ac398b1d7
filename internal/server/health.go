package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// healthHandler is an unauthenticated liveness probe. When a Ping
// function is wired it also reports metadata-store connectivity.
func (cfg Config) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}

		if cfg.Ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.Ping(ctx); err != nil {
				resp.Status = "degraded"
				resp.Database = "unreachable"
				render.Status(r, http.StatusServiceUnavailable)
			} else {
				resp.Database = "ok"
			}
		}

		render.JSON(w, r, resp)
	}
}
