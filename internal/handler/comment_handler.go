package handler

import (
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"go-blog-api/internal/middleware"
	"go-blog-api/internal/model"
	"go-blog-api/internal/service"
	"go-blog-api/pkg/problem"
)

type CommentHandler struct {
	service *service.CommentService
}

func NewCommentHandler(service *service.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}

	comments, err := h.service.ListByArticle(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		problem.Unauthorized(r, "login required").Write(w)
		return
	}

	id, ok := articleID(w, r)
	if !ok {
		return
	}

	var payload model.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		problem.BadRequest(r, nil).Write(w)
		return
	}

	comment, err := h.service.Create(r.Context(), principal, id, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/articles/%d/comments/%d", id, comment.ID))
	writeJSON(w, http.StatusCreated, comment)
}
