package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"bizrecords/internal/model"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout bounds trash and audit handlers. Long-lived routes such as the
// event stream must be mounted outside it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	body, _ := json.Marshal(model.ErrorResponse("REQUEST_TIMEOUT", "request timed out after "+timeout.String()))

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
