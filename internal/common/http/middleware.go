// internal/common/http/middleware.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mergington-activities/internal/common/logger"

	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

type contextKey string

const ctxKeyRequestID contextKey = "requestId"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one listed is outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequestRecorder receives one observation per finished request.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// WithRequestID stores a request id in ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestIDFromContext returns the request id or "".
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// RequestID reuses an inbound X-Request-ID or generates a uuid, and echoes it
// on the response.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set(HeaderRequestID, requestID)
			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), requestID)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

// AccessLog logs one line per request and feeds the recorders. The route
// label is the matched ServeMux pattern, which keeps label cardinality
// bounded.
func AccessLog(log logger.Logger, recorders ...RequestRecorder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			for _, recorder := range recorders {
				recorder.RecordRequest(r.Context(), r.Method, route, rec.status, duration)
			}

			log.Info("request handled", map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"route":      route,
				"status":     rec.status,
				"durationMs": duration.Milliseconds(),
				"requestId":  RequestIDFromContext(r.Context()),
			})
		})
	}
}

// Recover turns a handler panic into a 500 with the usual detail body.
func Recover(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					log.Error("panic while handling request", map[string]interface{}{
						"panic":     fmt.Sprint(p),
						"path":      r.URL.Path,
						"requestId": RequestIDFromContext(r.Context()),
					})
					WriteJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
