// internal/activity/service/handler.go
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"mergington-activities/internal/activity/events"
	"mergington-activities/internal/activity/store"
	apperrors "mergington-activities/internal/common/errors"
	commonhttp "mergington-activities/internal/common/http"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ActivityStore is the registry the handler mutates.
type ActivityStore interface {
	List() map[string]store.Activity
	Get(name string) (store.Activity, error)
	// SignUp and Unregister return the roster size after the change.
	SignUp(name, email string) (int, error)
	Unregister(name, email string) (int, error)
}

// RosterRecorder receives one call per signup or unregister attempt.
type RosterRecorder interface {
	RecordRosterChange(ctx context.Context, operation, outcome string)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Handler struct {
	config    *Config
	store     ActivityStore
	publisher events.Publisher
	logger    logger.Logger
	errors    *apperrors.ErrorHandler
	recorders []RosterRecorder

	mu     sync.RWMutex
	checks map[string]ReadinessCheck
}

func NewHandler(config *Config, st ActivityStore, publisher events.Publisher, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	log = log.WithFields(map[string]interface{}{"component": "activity-service"})
	return &Handler{
		config:    config,
		store:     st,
		publisher: publisher,
		logger:    log,
		errors:    apperrors.NewErrorHandler(log),
		checks:    make(map[string]ReadinessCheck),
	}
}

// WithRecorders adds roster recorders and returns h.
func (h *Handler) WithRecorders(recorders ...RosterRecorder) *Handler {
	h.recorders = append(h.recorders, recorders...)
	return h
}

// AddReadinessCheck registers a dependency probe for /ready.
func (h *Handler) AddReadinessCheck(name string, check ReadinessCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// ListActivities returns every activity keyed by name.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	commonhttp.WriteJSON(w, http.StatusOK, h.store.List())
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	h.handleRoster(w, r, OperationSignup)
}

func (h *Handler) Unregister(w http.ResponseWriter, r *http.Request) {
	h.handleRoster(w, r, OperationUnregister)
}

// Root sends browsers to the front-end page.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, RootRedirectTarget, http.StatusTemporaryRedirect)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	commonhttp.WriteJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// Ready runs every registered check and answers 503 if any fails.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]ReadinessCheck, len(names))
	for i, name := range names {
		checks[i] = h.checks[name]
	}
	h.mu.RUnlock()

	resp := StatusResponse{Status: "ready"}
	status := http.StatusOK
	if len(names) > 0 {
		resp.Checks = make(map[string]string, len(names))
	}
	for i, name := range names {
		if err := checks[i](r.Context()); err != nil {
			h.logger.Warn("readiness check failed", map[string]interface{}{
				"check": name,
				"error": err,
			})
			resp.Checks[name] = err.Error()
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	commonhttp.WriteJSON(w, status, resp)
}

func (h *Handler) handleRoster(w http.ResponseWriter, r *http.Request, operation string) {
	req := RosterRequest{
		ActivityName: r.PathValue("activityName"),
		Email:        r.URL.Query().Get("email"),
	}
	if err := req.Validate(); err != nil {
		h.record(r.Context(), "", operation, OutcomeInvalid)
		h.errors.HandleHTTPError(w, r, err)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("activity.name", req.ActivityName),
		attribute.String("roster.operation", operation),
	)

	var (
		err     error
		size    int
		message string
		evType  string
	)
	switch operation {
	case OperationSignup:
		size, err = h.store.SignUp(req.ActivityName, req.Email)
		message = fmt.Sprintf("Signed up %s for %s", req.Email, req.ActivityName)
		evType = events.TypeMemberJoined
	default:
		size, err = h.store.Unregister(req.ActivityName, req.Email)
		message = fmt.Sprintf("Unregistered %s from %s", req.Email, req.ActivityName)
		evType = events.TypeMemberLeft
	}

	if err != nil {
		stdErr := mapStoreError(err, req)
		label := req.ActivityName
		if stdErr.Code == apperrors.ErrCodeActivityNotFound {
			label = ""
		}
		h.record(r.Context(), label, operation, outcomeFor(stdErr.Code))
		span.SetAttributes(attribute.String("roster.outcome", outcomeFor(stdErr.Code)))
		h.errors.HandleHTTPError(w, r, stdErr)
		return
	}

	h.record(r.Context(), req.ActivityName, operation, OutcomeSuccess)
	metrics.ActivityParticipants.WithLabelValues(req.ActivityName).Set(float64(size))
	h.publish(r.Context(), events.NewEvent(evType, req.ActivityName, req.Email))

	h.logger.Info("roster updated", map[string]interface{}{
		"operation": operation,
		"activity":  req.ActivityName,
		"requestId": commonhttp.RequestIDFromContext(r.Context()),
	})
	commonhttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: message})
}

// publish never affects the response; the roster change has committed.
func (h *Handler) publish(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.config.EventTimeout)
	defer cancel()

	if err := h.publisher.Publish(ctx, event); err != nil {
		trace.SpanFromContext(ctx).AddEvent("roster event not delivered", trace.WithAttributes(
			attribute.String("event.type", event.Type),
		))
		h.logger.Warn("roster event not delivered", map[string]interface{}{
			"eventId":  event.ID,
			"type":     event.Type,
			"activity": event.Activity,
			"error":    err,
		})
	}
}

func (h *Handler) record(ctx context.Context, activity, operation, outcome string) {
	if activity == "" {
		activity = "unknown"
	}
	metrics.RosterChangesTotal.WithLabelValues(activity, operation, outcome).Inc()
	for _, rec := range h.recorders {
		rec.RecordRosterChange(ctx, operation, outcome)
	}
}

func mapStoreError(err error, req RosterRequest) *apperrors.StandardError {
	switch {
	case errors.Is(err, store.ErrActivityNotFound):
		return apperrors.NewActivityNotFoundError(req.ActivityName)
	case errors.Is(err, store.ErrAlreadyRegistered):
		return apperrors.NewAlreadyRegisteredError(req.ActivityName, req.Email)
	case errors.Is(err, store.ErrCapacityExceeded):
		return apperrors.NewCapacityExceededError(req.ActivityName)
	case errors.Is(err, store.ErrNotRegistered):
		return apperrors.NewNotRegisteredError(req.ActivityName, req.Email)
	default:
		return apperrors.Normalize(err)
	}
}

func outcomeFor(code apperrors.ErrorCode) string {
	switch code {
	case apperrors.ErrCodeActivityNotFound:
		return OutcomeNotFound
	case apperrors.ErrCodeAlreadyRegistered:
		return OutcomeAlreadyRegistered
	case apperrors.ErrCodeCapacityExceeded:
		return OutcomeCapacityExceeded
	case apperrors.ErrCodeNotRegistered:
		return OutcomeNotRegistered
	case apperrors.ErrCodeInvalidRequest:
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
