// internal/activity/service/routes.go
package service

import (
	"net/http"
	"os"

	commonhttp "mergington-activities/internal/common/http"
	"mergington-activities/internal/common/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
)

// RegisterRoutes mounts the activity API, probes, /metrics and, when the
// directory exists, the static front-end under /static/.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /activities", h.ListActivities)
	mux.HandleFunc("POST /activities/{activityName}/signup", h.Signup)
	mux.HandleFunc("POST /activities/{activityName}/unregister", h.Unregister)
	mux.HandleFunc("GET /{$}", h.Root)

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	if dir := h.config.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
		} else {
			h.logger.Warn("static directory not found, front-end disabled", map[string]interface{}{
				"staticDir": dir,
			})
		}
	}
}

// NewHTTPHandler mounts h on a fresh mux behind the standard middleware.
// A nil tracer disables request spans. Recorders receive one call per
// request from the access log.
func NewHTTPHandler(h *Handler, log logger.Logger, tracer trace.Tracer, recorders ...commonhttp.RequestRecorder) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	mws := []commonhttp.Middleware{commonhttp.RequestID()}
	if tracer != nil {
		// must sit outside AccessLog so both see the pattern the mux sets
		mws = append(mws, commonhttp.Trace(tracer))
	}
	mws = append(mws, commonhttp.AccessLog(log, recorders...), commonhttp.Recover(log))
	return commonhttp.Chain(mux, mws...)
}
