package middleware

import (
	"encoding/json"
	"net/http"

	"bizrecords/internal/model"
)

// RequestIDHeader carries the id Logging assigns to every request.
const RequestIDHeader = "X-Request-ID"

// WriteJSON writes body with status, stamping the request id set by Logging.
func WriteJSON(w http.ResponseWriter, status int, body model.APIResponse) {
	body.RequestID = w.Header().Get(RequestIDHeader)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
