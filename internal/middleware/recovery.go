package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"go-blog-api/pkg/problem"
)

// Recovery turns panics into opaque 500 problem responses. The panic value
// and stack go to the log only; the body never carries fault detail.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				slog.Error("panic recovered", "error", fmt.Sprintf("%v", recovered), "stack", string(debug.Stack()))
				problem.Internal(r).Write(w)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
