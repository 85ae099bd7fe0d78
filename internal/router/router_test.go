package router

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-blog-api/internal/config"
	"go-blog-api/internal/handler"
	"go-blog-api/internal/middleware"
	"go-blog-api/internal/model"
	"go-blog-api/internal/service"
	"go-blog-api/internal/session"
	"go-blog-api/pkg/problem"
)

// ── in-memory stores ─────────────────────────────────────────────

type memUserStore struct {
	users  map[string]model.User
	byID   map[int64]model.User
	nextID int64
	err    error
}

func (s *memUserStore) FindByID(_ context.Context, id int64) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *memUserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	u, ok := s.users[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *memUserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.users[strings.ToLower(strings.TrimSpace(username))]
	return ok, nil
}

func (s *memUserStore) Create(_ context.Context, u model.User) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	u.ID = s.nextID
	s.users[strings.ToLower(u.Username)] = u
	s.byID[u.ID] = u
	return u.ID, nil
}

type memArticleStore struct {
	articles map[int64]model.Article
	nextID   int64
	err      error
}

func (s *memArticleStore) Create(_ context.Context, a model.Article) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	a.ID = s.nextID
	s.articles[a.ID] = a
	return a.ID, nil
}

func (s *memArticleStore) FindByID(_ context.Context, id int64) (model.Article, error) {
	if s.err != nil {
		return model.Article{}, s.err
	}
	a, ok := s.articles[id]
	if !ok {
		return model.Article{}, model.ErrArticleNotFound
	}
	return a, nil
}

func (s *memArticleStore) List(_ context.Context) ([]model.Article, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.Article, 0, len(s.articles))
	for _, a := range s.articles {
		out = append(out, a)
	}
	return out, nil
}

func (s *memArticleStore) Update(_ context.Context, a model.Article) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.articles[a.ID]; !ok {
		return model.ErrArticleNotFound
	}
	s.articles[a.ID] = a
	return nil
}

func (s *memArticleStore) Delete(_ context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.articles[id]; !ok {
		return model.ErrArticleNotFound
	}
	delete(s.articles, id)
	return nil
}

type memCommentStore struct {
	comments map[int64]model.Comment
	nextID   int64
}

func (s *memCommentStore) Create(_ context.Context, c model.Comment) (int64, error) {
	s.nextID++
	c.ID = s.nextID
	s.comments[c.ID] = c
	return c.ID, nil
}

func (s *memCommentStore) ListByArticle(_ context.Context, articleID int64) ([]model.Comment, error) {
	out := make([]model.Comment, 0)
	for _, c := range s.comments {
		if c.ArticleID == articleID {
			out = append(out, c)
		}
	}
	return out, nil
}

// ── harness ──────────────────────────────────────────────────────

type testEnv struct {
	server   *httptest.Server
	users    *memUserStore
	articles *memArticleStore
	sessions *session.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := &memUserStore{users: map[string]model.User{}, byID: map[int64]model.User{}}
	articles := &memArticleStore{articles: map[int64]model.Article{}}
	comments := &memCommentStore{comments: map[int64]model.Comment{}}
	sessions := session.NewStore(time.Hour)

	cfg := &config.Config{
		ServerPort:     "8080",
		RequestTimeout: 30 * time.Second,
		CORSOrigins:    []string{"http://localhost:3000"},
		SessionTTL:     time.Hour,
	}

	sessionMW := middleware.NewSessionMiddleware(sessions)
	authService := service.NewAuthService(users, sessions)
	articleService := service.NewArticleService(articles)

	server := httptest.NewServer(New(cfg, sessionMW, Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Csrf:    handler.NewCsrfHandler(),
		User:    handler.NewUserHandler(service.NewUserService(users)),
		Article: handler.NewArticleHandler(articleService),
		Comment: handler.NewCommentHandler(service.NewCommentService(comments, articles)),
	}))
	t.Cleanup(server.Close)

	return &testEnv{server: server, users: users, articles: articles, sessions: sessions}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (e *testEnv) cookie(t *testing.T, client *http.Client, name string) string {
	t.Helper()

	base, err := url.Parse(e.server.URL)
	require.NoError(t, err)
	for _, c := range client.Jar.Cookies(base) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// csrfToken fetches /csrf-cookie and returns the issued token.
func (e *testEnv) csrfToken(t *testing.T, client *http.Client) string {
	t.Helper()

	resp, err := client.Get(e.server.URL + "/csrf-cookie")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	token := e.cookie(t, client, middleware.CSRFCookieName)
	require.NotEmpty(t, token)
	return token
}

func (e *testEnv) do(t *testing.T, client *http.Client, method, path string, body any, csrf string) *http.Response {
	t.Helper()

	var reader io.Reader = bytes.NewReader(nil)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if csrf != "" {
		req.Header.Set(middleware.CSRFHeaderName, csrf)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) register(t *testing.T, client *http.Client, username, password string) {
	t.Helper()

	token := e.csrfToken(t, client)
	resp := e.do(t, client, http.MethodPost, "/users", model.RegisterRequest{Username: username, Password: password}, token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func (e *testEnv) login(t *testing.T, client *http.Client, username, password string) {
	t.Helper()

	token := e.csrfToken(t, client)
	resp := e.do(t, client, http.MethodPost, "/login", model.LoginRequest{Username: username, Password: password}, token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func readProblem(t *testing.T, resp *http.Response) problem.Problem {
	t.Helper()

	require.Equal(t, problem.ContentType, resp.Header.Get("Content-Type"))
	var p problem.Problem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	return p
}

// ── pipeline behavior ───────────────────────────────────────────

func TestLoginRotatesSessionID(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	env.register(t, client, "alice", "s3cret1234")

	env.login(t, client, "alice", "s3cret1234")
	first := env.cookie(t, client, middleware.SessionCookieName)
	require.NotEmpty(t, first)

	// Re-authentication with a live session still rotates.
	env.login(t, client, "alice", "s3cret1234")
	second := env.cookie(t, client, middleware.SessionCookieName)
	require.NotEmpty(t, second)

	assert.NotEqual(t, first, second)
	_, ok := env.sessions.Get(first)
	assert.False(t, ok, "pre-rotation identifier must be invalid")
}

func TestLoginUniformFailureShape(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	env.register(t, client, "alice", "s3cret1234")
	token := env.csrfToken(t, client)

	unknown := env.do(t, client, http.MethodPost, "/login", model.LoginRequest{Username: "nobody", Password: "s3cret1234"}, token)
	defer unknown.Body.Close()
	wrongPw := env.do(t, client, http.MethodPost, "/login", model.LoginRequest{Username: "alice", Password: "wrong-password"}, token)
	defer wrongPw.Body.Close()

	require.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
	require.Equal(t, http.StatusUnauthorized, wrongPw.StatusCode)

	p1 := readProblem(t, unknown)
	p2 := readProblem(t, wrongPw)
	assert.Equal(t, p1, p2, "response must not reveal whether the username exists")
}

func TestLoginMalformedBodyIs401(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	token := env.csrfToken(t, client)

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/login", strings.NewReader("{not json"))
	require.NoError(t, err)
	req.Header.Set(middleware.CSRFHeaderName, token)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginWithoutCSRFHeaderIs403(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	env.register(t, client, "alice", "s3cret1234")
	env.csrfToken(t, client)

	// Cookie is in the jar, header deliberately omitted.
	resp := env.do(t, client, http.MethodPost, "/login", model.LoginRequest{Username: "alice", Password: "s3cret1234"}, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	p := readProblem(t, resp)
	assert.Equal(t, "Forbidden", p.Title)
	assert.Equal(t, 403, p.Status)
}

func TestCSRFTokenReusableAcrossRequests(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	env.register(t, client, "alice", "s3cret1234")
	env.login(t, client, "alice", "s3cret1234")
	token := env.cookie(t, client, middleware.CSRFCookieName)

	for i := 0; i < 3; i++ {
		resp := env.do(t, client, http.MethodPost, "/articles", model.ArticleRequest{Title: "Post", Content: "body"}, token)
		resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode, "request %d", i)
	}
}

func TestMutationWithMismatchedCSRFIs403(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	env.register(t, client, "alice", "s3cret1234")
	env.login(t, client, "alice", "s3cret1234")

	resp := env.do(t, client, http.MethodPost, "/articles", model.ArticleRequest{Title: "Post", Content: "body"}, "not-the-cookie-value")
	defer resp.Body.Close()

	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Forbidden", readProblem(t, resp).Title)
}

func TestPublicReadsNeedNoAuth(t *testing.T) {
	env := newTestEnv(t)
	author := newClient(t)
	env.register(t, author, "alice", "s3cret1234")
	env.login(t, author, "alice", "s3cret1234")
	token := env.cookie(t, author, middleware.CSRFCookieName)

	created := env.do(t, author, http.MethodPost, "/articles", model.ArticleRequest{Title: "Public", Content: "body"}, token)
	created.Body.Close()
	require.Equal(t, http.StatusCreated, created.StatusCode)

	anon := newClient(t)
	list, err := anon.Get(env.server.URL + "/articles")
	require.NoError(t, err)
	defer list.Body.Close()
	assert.Equal(t, http.StatusOK, list.StatusCode)

	detail, err := anon.Get(env.server.URL + "/articles/1")
	require.NoError(t, err)
	defer detail.Body.Close()
	assert.Equal(t, http.StatusOK, detail.StatusCode)

	comments, err := anon.Get(env.server.URL + "/articles/1/comments")
	require.NoError(t, err)
	defer comments.Body.Close()
	assert.Equal(t, http.StatusOK, comments.StatusCode)
}

func TestMutationsRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	token := env.csrfToken(t, client)

	resp := env.do(t, client, http.MethodPost, "/articles", model.ArticleRequest{Title: "Post", Content: "body"}, token)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	p := readProblem(t, resp)
	assert.Equal(t, "Unauthorized", p.Title)
	assert.Equal(t, "login required", p.Detail)
}

func TestUnknownPathDeniedByDefault(t *testing.T) {
	env := newTestEnv(t)
	anon := newClient(t)

	resp, err := anon.Get(env.server.URL + "/admin/internal")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	authed := newClient(t)
	env.register(t, authed, "alice", "s3cret1234")
	env.login(t, authed, "alice", "s3cret1234")

	resp2, err := authed.Get(env.server.URL + "/admin/internal")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestOwnershipEnforcedOnUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)

	alice := newClient(t)
	env.register(t, alice, "alice", "s3cret1234")
	env.login(t, alice, "alice", "s3cret1234")
	aliceToken := env.cookie(t, alice, middleware.CSRFCookieName)

	created := env.do(t, alice, http.MethodPost, "/articles", model.ArticleRequest{Title: "Hers", Content: "body"}, aliceToken)
	created.Body.Close()
	require.Equal(t, http.StatusCreated, created.StatusCode)

	bob := newClient(t)
	env.register(t, bob, "bob", "passw0rd99")
	env.login(t, bob, "bob", "passw0rd99")
	bobToken := env.cookie(t, bob, middleware.CSRFCookieName)

	update := env.do(t, bob, http.MethodPut, "/articles/1", model.ArticleRequest{Title: "His now", Content: "body"}, bobToken)
	defer update.Body.Close()
	require.Equal(t, http.StatusForbidden, update.StatusCode)
	p := readProblem(t, update)
	assert.Equal(t, "access denied", p.Detail)

	del := env.do(t, bob, http.MethodDelete, "/articles/1", nil, bobToken)
	del.Body.Close()
	assert.Equal(t, http.StatusForbidden, del.StatusCode)

	// Untouched.
	assert.Equal(t, "Hers", env.articles.articles[1].Title)
}

func TestValidationProblemCarriesPointers(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	token := env.csrfToken(t, client)

	resp := env.do(t, client, http.MethodPost, "/users", model.RegisterRequest{Username: "", Password: "x"}, token)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	p := readProblem(t, resp)
	assert.Equal(t, "Bad Request", p.Title)
	require.Len(t, p.Errors, 2)
	assert.Equal(t, "#/username", p.Errors[0].Pointer)
	assert.Equal(t, "#/password", p.Errors[1].Pointer)
}

func TestDuplicateUsernameIsConflict(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	env.register(t, client, "alice", "s3cret1234")
	token := env.cookie(t, client, middleware.CSRFCookieName)

	resp := env.do(t, client, http.MethodPost, "/users", model.RegisterRequest{Username: "alice", Password: "different1"}, token)
	defer resp.Body.Close()

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Conflict", readProblem(t, resp).Title)
}

func TestStoreFaultIsOpaque500(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)

	env.articles.err = errors.New("pq: connection reset while reading table articles")
	resp, err := client.Get(env.server.URL + "/articles")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body, 4)
	assert.Equal(t, "Internal Server Error", body["title"])
	assert.Equal(t, "", body["detail"])
	assert.NotContains(t, body, "errors")
}

func TestNoResponseEverLeaksPasswordMaterial(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	env.register(t, client, "alice", "s3cret1234")
	env.login(t, client, "alice", "s3cret1234")
	token := env.cookie(t, client, middleware.CSRFCookieName)

	created := env.do(t, client, http.MethodPost, "/articles", model.ArticleRequest{Title: "Post", Content: "body"}, token)
	created.Body.Close()
	require.Equal(t, http.StatusCreated, created.StatusCode)

	paths := []string{"/articles", "/articles/1", "/articles/1/comments", "/users/1"}
	for _, path := range paths {
		resp, err := client.Get(env.server.URL + path)
		require.NoError(t, err)
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)

		body := string(data)
		assert.NotContains(t, body, "password", path)
		assert.NotContains(t, body, "s3cret1234", path)
		assert.NotContains(t, body, "$2a$", path)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	env.register(t, client, "alice", "s3cret1234")
	env.login(t, client, "alice", "s3cret1234")
	token := env.cookie(t, client, middleware.CSRFCookieName)
	sessionID := env.cookie(t, client, middleware.SessionCookieName)

	resp := env.do(t, client, http.MethodPost, "/logout", nil, token)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, ok := env.sessions.Get(sessionID)
	assert.False(t, ok)

	again := env.do(t, client, http.MethodPost, "/articles", model.ArticleRequest{Title: "Post", Content: "body"}, token)
	defer again.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, again.StatusCode)
}

func TestRegisterSetsLocation(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	token := env.csrfToken(t, client)

	resp := env.do(t, client, http.MethodPost, "/users", model.RegisterRequest{Username: "alice", Password: "s3cret1234"}, token)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/users/1", resp.Header.Get("Location"))
}
