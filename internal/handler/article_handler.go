package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"go-blog-api/internal/middleware"
	"go-blog-api/internal/model"
	"go-blog-api/internal/service"
	"go-blog-api/pkg/problem"
)

type ArticleHandler struct {
	service *service.ArticleService
}

func NewArticleHandler(service *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{service: service}
}

func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, articles)
}

func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}

	article, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		problem.Unauthorized(r, "login required").Write(w)
		return
	}

	var payload model.ArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		problem.BadRequest(r, nil).Write(w)
		return
	}

	article, err := h.service.Create(r.Context(), principal, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/articles/%d", article.ID))
	writeJSON(w, http.StatusCreated, article)
}

func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var payload model.ArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		problem.BadRequest(r, nil).Write(w)
		return
	}

	article, err := h.service.Update(r.Context(), principal, id, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		problem.Unauthorized(r, "login required").Write(w)
		return
	}

	id, ok := articleID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// articleID parses the route parameter; a non-numeric id can only reference
// a missing resource.
func articleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "articleID"), 10, 64)
	if err != nil {
		problem.NotFound(r).Write(w)
		return 0, false
	}
	return id, true
}
