package api

import (
	"errors"
	"net/http"

	"github.com/okian/triage/internal/adapters/repository"
	"github.com/okian/triage/internal/domain/classify"
	"github.com/okian/triage/internal/registry"
)

// Sentinel kinds for API-level errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps the engine's error taxonomy onto HTTP. Everything not
// recognized is a 500 so failures never masquerade as client faults.
func statusFor(err error) (status int, code string) {
	switch {
	case errors.Is(err, registry.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, repository.ErrIssueNotFound),
		errors.Is(err, repository.ErrDeveloperNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, registry.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, registry.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, classify.ErrUnavailable):
		return http.StatusServiceUnavailable, "classifier_unavailable"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: "bad_request", Message: msg})
}
