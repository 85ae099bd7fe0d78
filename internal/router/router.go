package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-blog-api/internal/config"
	"go-blog-api/internal/handler"
	"go-blog-api/internal/middleware"
	"go-blog-api/pkg/problem"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Csrf    *handler.CsrfHandler
	User    *handler.UserHandler
	Article *handler.ArticleHandler
	Comment *handler.CommentHandler
}

// New builds the filter chain and route table. Chain order is fixed:
// recovery, logging, CORS, security headers, CSRF validation, session
// resolution, then the route handler. Routes not listed as public require
// an authenticated principal, unknown paths included.
func New(cfg *config.Config, sessionMW *middleware.SessionMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.CSRF)
	r.Use(sessionMW.Resolve)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Public routes.
	r.Get("/csrf-cookie", h.Csrf.Issue)
	r.Post("/login", h.Auth.Login)
	r.Post("/users", h.User.Register)
	r.Get("/articles", h.Article.List)
	r.Get("/articles/{articleID}", h.Article.Get)
	r.Get("/articles/{articleID}/comments", h.Comment.List)

	// Everything below requires a logged-in principal.
	r.Group(func(priv chi.Router) {
		priv.Use(sessionMW.RequireAuth)

		priv.Post("/logout", h.Auth.Logout)
		priv.Get("/users/{userID}", h.User.Get)
		priv.Post("/articles", h.Article.Create)
		priv.Put("/articles/{articleID}", h.Article.Update)
		priv.Delete("/articles/{articleID}", h.Article.Delete)
		priv.Post("/articles/{articleID}/comments", h.Comment.Create)
	})

	// Deny by default: an unmatched path is 401 for anonymous callers and
	// 404 only once authenticated.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.PrincipalFromContext(r.Context()); !ok {
			problem.Unauthorized(r, "login required").Write(w)
			return
		}
		problem.NotFound(r).Write(w)
	})

	return r
}
