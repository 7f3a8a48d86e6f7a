package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aoki-blog/apiserver/internal/logging"
	"github.com/aoki-blog/apiserver/internal/validate"
)

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a simple informational payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationResponse reports the full batch of field errors for a rejected
// body, echoing the raw submitted values so clients can re-populate forms.
type ValidationResponse struct {
	Message          string                `json:"message"`
	ValidationErrors []validate.FieldError `json:"validationErrors"`
	PostVals         map[string]any        `json:"postVals"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, message)
}

func writeUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "unauthorized")
}

// internalError logs the fault and returns a 500. Error detail is only
// included in the response in development mode.
func internalError(w http.ResponseWriter, r *http.Request, log logging.Logger, dev bool, message string, err error) {
	log.Error(r.Context(), message, "err", err)
	if dev && err != nil {
		writeError(w, http.StatusInternalServerError, message+": "+err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, message)
}
