package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/giygas/druginfo/entities"
	"github.com/giygas/druginfo/logging"
)

// RespondWithJSON writes payload as JSON with the given status code
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// RespondWithError writes {"error": message}, the same shape the inference
// backend uses, so clients handle both alike.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, entities.ErrorResponse{Error: message})
}
