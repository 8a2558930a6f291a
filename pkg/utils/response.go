package utils

import (
	"encoding/json"
	"net/http"

	"redweb-backend/internal/apperr"
)

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondMessage sends {"message": message} with the given status
func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"message": message})
}

// RespondError maps err onto its HTTP status and writes {"message": ...}.
// With debug set, server errors also carry the underlying cause as "error".
func RespondError(w http.ResponseWriter, err error, debug bool) {
	status := apperr.Status(err)
	body := map[string]string{"message": apperr.PublicMessage(err)}
	if debug && status >= http.StatusInternalServerError {
		body["error"] = err.Error()
	}
	RespondJSON(w, status, body)
}
