package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/mailmirror/internal/core/domain"
	"github.com/custodia-labs/mailmirror/internal/logger"
)

// Response messages form a fixed enum; consumers match on them.
const (
	msgSuccess       = "success"
	msgBadRequest    = "bad request"
	msgUnauthorized  = "user is not authorized"
	msgNotRegistered = "user is not registerred"
	msgTooLarge      = "total file size exceeds the maximum limit of 25 MB"
)

// envelope is the uniform response shape of every endpoint.
type envelope struct {
	StatusCode int      `json:"statusCode"`
	Message    []string `json:"message"`
	Data       any      `json:"data,omitempty"`
}

// writeJSON renders one envelope.
func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{
		StatusCode: status,
		Message:    []string{message},
		Data:       data,
	}); err != nil {
		logger.Warn("Encoding response: %v", err)
	}
}

// writeError maps a service error onto the envelope enum.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, msgBadRequest, nil)
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, msgUnauthorized, nil)
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, msgNotRegistered, nil)
	case errors.Is(err, domain.ErrAttachmentTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, msgTooLarge, nil)
	default:
		logger.Error("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, msgBadRequest, nil)
	}
}
