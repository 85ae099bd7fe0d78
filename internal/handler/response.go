package handler

import (
	"errors"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"go-blog-api/internal/model"
	"go-blog-api/internal/validation"
	"go-blog-api/pkg/problem"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError is the single dispatch point from typed conditions to problem
// responses. Anything it does not recognize becomes an opaque 500: the
// original error is logged, never serialized.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs *validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		violations := make([]problem.Violation, 0, len(fieldErrs.Violations))
		for _, v := range fieldErrs.Violations {
			violations = append(violations, problem.Violation{Pointer: v.Pointer, Detail: v.Detail})
		}
		problem.BadRequest(r, violations).Write(w)
		return
	}

	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		problem.Unauthorized(r, "invalid username or password").Write(w)
	case errors.Is(err, model.ErrUnauthenticated):
		problem.Unauthorized(r, "login required").Write(w)
	case errors.Is(err, model.ErrAccessDenied):
		problem.Forbidden(r, "access denied").Write(w)
	case errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrArticleNotFound),
		errors.Is(err, model.ErrCommentNotFound):
		problem.NotFound(r).Write(w)
	case errors.Is(err, model.ErrUsernameTaken):
		problem.Conflict(r, "username is already taken").Write(w)
	default:
		slog.Error("unhandled error in writeError", "error", err.Error(), "path", r.URL.Path)
		problem.Internal(r).Write(w)
	}
}
