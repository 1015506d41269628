package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorBody is the failure shape every endpoint shares.
type errorBody struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes {ok:false, message}.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Message: message})
}

// jsonFailure writes {ok:false, message, error} with the cause's text.
func jsonFailure(w http.ResponseWriter, status int, message string, err error) {
	jsonResponse(w, status, errorBody{Message: message, Error: err.Error()})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
