package handler

import (
	"net/http"

	"go-blog-api/internal/middleware"
)

type CsrfHandler struct{}

func NewCsrfHandler() *CsrfHandler {
	return &CsrfHandler{}
}

// Issue guarantees the caller holds a CSRF cookie. The token itself travels
// only in the cookie; the response has no body.
func (h *CsrfHandler) Issue(w http.ResponseWriter, r *http.Request) {
	middleware.IssueCSRFToken(w, r)
	w.WriteHeader(http.StatusNoContent)
}
