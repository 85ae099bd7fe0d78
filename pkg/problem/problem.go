// Package problem implements RFC 7807 problem detail responses. It is the
// only place allowed to shape error bodies, so every 4xx/5xx the API emits
// has the same four keys and never carries internal error text.
package problem

import (
	"net/http"

	json "github.com/goccy/go-json"
)

const ContentType = "application/problem+json"

type Violation struct {
	Pointer string `json:"pointer"`
	Detail  string `json:"detail"`
}

type Problem struct {
	Title    string      `json:"title"`
	Status   int         `json:"status"`
	Detail   string      `json:"detail"`
	Instance string      `json:"instance"`
	Errors   []Violation `json:"errors,omitempty"`
}

func New(status int, title string, detail string, instance string) *Problem {
	return &Problem{Title: title, Status: status, Detail: detail, Instance: instance}
}

func BadRequest(r *http.Request, violations []Violation) *Problem {
	p := New(http.StatusBadRequest, "Bad Request", "request validation failed", r.URL.Path)
	p.Errors = violations
	return p
}

func Unauthorized(r *http.Request, detail string) *Problem {
	return New(http.StatusUnauthorized, "Unauthorized", detail, r.URL.Path)
}

func Forbidden(r *http.Request, detail string) *Problem {
	return New(http.StatusForbidden, "Forbidden", detail, r.URL.Path)
}

func NotFound(r *http.Request) *Problem {
	return New(http.StatusNotFound, "NotFound", "resource not found", r.URL.Path)
}

func Conflict(r *http.Request, detail string) *Problem {
	return New(http.StatusConflict, "Conflict", detail, r.URL.Path)
}

// Internal deliberately carries no detail: whatever fault produced it stays
// in the server log, never in the response.
func Internal(r *http.Request) *Problem {
	return New(http.StatusInternalServerError, "Internal Server Error", "", r.URL.Path)
}

func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
