// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
	"net/http"

	commonhttp "mergington-activities/internal/common/http"
)

// ErrorHandler renders errors as {"detail": ...} responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// DetailResponse is the failure body.
type DetailResponse struct {
	Detail string `json:"detail"`
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleHTTPError writes err with the status mapped from its code and
// returns the normalized error.
func (h *ErrorHandler) HandleHTTPError(w http.ResponseWriter, r *http.Request, err error) *StandardError {
	stdErr := Normalize(err)
	status := stdErr.HTTPStatus()

	h.logError(r, stdErr, status)

	commonhttp.WriteJSON(w, status, DetailResponse{Detail: stdErr.Message})
	return stdErr
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError, status int) {
	fields := map[string]interface{}{
		"method":        r.Method,
		"path":          r.URL.Path,
		"requestId":     commonhttp.RequestIDFromContext(r.Context()),
		"status":        status,
		"errorCode":     string(stdErr.Code),
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}

	if IsExpected(stdErr.Code) {
		h.logger.Debug("request rejected", fields)
		return
	}
	h.logger.Error("request failed", fields)
}
