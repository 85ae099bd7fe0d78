package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows browser clients to carry the session cookie and the CSRF
// header cross-origin. Credentials mode forbids the "*" origin, so an
// explicit origin list is required in production config.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", CSRFHeaderName, requestIDHeader},
		ExposedHeaders:   []string{"Location", requestIDHeader},
		MaxAge:           3600,
		AllowCredentials: true,
	})

	return handler.Handler
}
