package middleware

import (
	"context"
	"net/http"

	"go-blog-api/internal/session"
	"go-blog-api/pkg/problem"
)

// SessionCookieName matches the servlet-container convention so existing
// clients keep working.
const SessionCookieName = "JSESSIONID"

type contextKey string

const (
	principalContextKey contextKey = "principal"
	sessionIDContextKey contextKey = "session_id"
)

type SessionMiddleware struct {
	store *session.Store
}

func NewSessionMiddleware(store *session.Store) *SessionMiddleware {
	return &SessionMiddleware{store: store}
}

// Resolve maps the session cookie to a Principal in the request context.
// An absent, unknown, or expired identifier leaves the request anonymous;
// rejecting it is RequireAuth's job.
func (m *SessionMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess, ok := m.store.Get(cookie.Value)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey, sess.Principal)
		ctx = context.WithValue(ctx, sessionIDContextKey, sess.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects anonymous requests with a 401 problem. No redirect:
// this is an API, not a login page.
func (m *SessionMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			problem.Unauthorized(r, "login required").Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func PrincipalFromContext(ctx context.Context) (session.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(session.Principal)
	return p, ok
}

// SessionIDFromContext returns the identifier of the resolved session, when
// the request carried a valid one.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDContextKey).(string)
	return id, ok
}
