package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"go-blog-api/pkg/problem"
)

const (
	CSRFCookieName = "XSRF-TOKEN"
	CSRFHeaderName = "X-XSRF-TOKEN"
)

// CSRF enforces the double-submit cookie pattern. Every state-changing
// request must carry the token both in the XSRF-TOKEN cookie and in the
// X-XSRF-TOKEN header, and the two must match. Safe methods pass through.
// The login route is deliberately NOT exempted: the pair is required there
// like on any other POST.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(CSRFCookieName)
		if err != nil || cookie.Value == "" {
			problem.Forbidden(r, "CSRF token is invalid").Write(w)
			return
		}

		header := r.Header.Get(CSRFHeaderName)
		if header == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
			problem.Forbidden(r, "CSRF token is invalid").Write(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// IssueCSRFToken makes sure the caller holds a CSRF token: an existing
// cookie value is kept (tokens are reusable, not per-request), otherwise a
// fresh one is generated and set. Returns the active token value.
func IssueCSRFToken(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(CSRFCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token := newCSRFToken()
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		// Readable by client JS so it can be echoed in the header.
		HttpOnly: false,
	})
	return token
}

func newCSRFToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
