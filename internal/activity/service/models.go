// internal/activity/service/models.go
package service

import (

	apperrors "mergington-activities/internal/common/errors"
)

const (
	OperationSignup     = "signup"
	OperationUnregister = "unregister"

	OutcomeSuccess           = "success"
	OutcomeNotFound          = "not_found"
	OutcomeAlreadyRegistered = "already_registered"
	OutcomeCapacityExceeded  = "capacity_exceeded"
	OutcomeNotRegistered     = "not_registered"
	OutcomeInvalid           = "invalid"
	OutcomeError             = "error"

	RootRedirectTarget = "/static/index.html"
)

// RosterRequest is the input of signup and unregister.
type RosterRequest struct {
	ActivityName string
	Email        string
}

func (r RosterRequest) Validate() error {
	if r.ActivityName == "" {
		return apperrors.NewInvalidRequestError("activity name is required")
	}
	if r.Email == "" {
		return apperrors.NewInvalidRequestError("email query parameter is required")
	}
	return nil
}

type MessageResponse struct {
	Message string `json:"message"`
}

type StatusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
