package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"bizrecords/internal/model"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				slog.Error("panic recovered",
					"error", fmt.Sprintf("%v", recovered),
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", w.Header().Get(RequestIDHeader),
					"stack", string(debug.Stack()))
				WriteJSON(w, http.StatusInternalServerError, model.ErrorResponse("INTERNAL_ERROR", "Unexpected server error"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
