// Package httpx holds the JSON response helpers used by module handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/georgemunganga/supplyhub/internal/lifecycle"
	"github.com/georgemunganga/supplyhub/internal/platform/apperr"
	"github.com/georgemunganga/supplyhub/internal/platform/logger"
)

// Respond writes body as JSON with the given status.
func Respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Decode reads a JSON request body into dst.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, apperr.ErrValidation)
	}
	return nil
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, lifecycle.ErrIllegalTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, lifecycle.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error      string                     `json:"error"`
	Transition *lifecycle.TransitionError `json:"transition,omitempty"`
}

// Error logs err on the request logger and writes it as a JSON error body.
// Internal errors are not echoed to the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	log := logger.FromContext(r.Context())

	body := errorBody{Error: err.Error()}
	switch {
	case status >= http.StatusInternalServerError:
		log.Error("request failed", zap.Error(err))
		body.Error = http.StatusText(status)
	case status == http.StatusUnprocessableEntity:
		log.Warn("transition rejected", zap.Error(err))
		if te, ok := lifecycle.AsTransitionError(err); ok {
			body.Error = te.Message
			body.Transition = te
		}
	default:
		log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	Respond(w, status, body)
}
