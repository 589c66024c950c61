package server

import (
	"encoding/json"
	"errors"
	"net/http"

	pocketerrors "github.com/julianstephens/pocket/internal/errors"
	"github.com/julianstephens/pocket/internal/logger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// writeError maps the error taxonomy onto HTTP status codes. Storage details
// are logged, never sent to the client.
func writeError(w http.ResponseWriter, err error) {
	var ve *pocketerrors.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: ve.Error()})
	case errors.Is(err, pocketerrors.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "habit not found"})
	case errors.Is(err, pocketerrors.ErrConfirmationRequired):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "confirmation_required", Message: "repeat the request with confirm=true to delete permanently"})
	default:
		logger.Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "An internal error occurred"})
	}
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: message})
}
