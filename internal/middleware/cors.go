package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
	"github.com/samber/lo"
)

// CORS allows the configured frontends to call the trash API. Origins are
// compared without a trailing slash.
func CORS(origins []string) func(http.Handler) http.Handler {
	origins = lo.Compact(lo.Map(origins, func(origin string, _ int) string {
		return strings.TrimSuffix(strings.TrimSpace(origin), "/")
	}))
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{"Retry-After", RequestIDHeader},
		MaxAge:           3600,
		AllowCredentials: false,
	})

	return handler.Handler
}
