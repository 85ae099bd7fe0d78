package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-blog-api/internal/model"
	"go-blog-api/internal/session"
	"go-blog-api/internal/validation"
)

type fakeArticleStore struct {
	articles map[int64]model.Article
	nextID   int64
	err      error
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{articles: map[int64]model.Article{}}
}

func (f *fakeArticleStore) Create(_ context.Context, a model.Article) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	a.ID = f.nextID
	f.articles[a.ID] = a
	return a.ID, nil
}

func (f *fakeArticleStore) FindByID(_ context.Context, id int64) (model.Article, error) {
	if f.err != nil {
		return model.Article{}, f.err
	}
	a, ok := f.articles[id]
	if !ok {
		return model.Article{}, model.ErrArticleNotFound
	}
	return a, nil
}

func (f *fakeArticleStore) List(_ context.Context) ([]model.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Article, 0, len(f.articles))
	for _, a := range f.articles {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeArticleStore) Update(_ context.Context, a model.Article) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.articles[a.ID]; !ok {
		return model.ErrArticleNotFound
	}
	f.articles[a.ID] = a
	return nil
}

func (f *fakeArticleStore) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.articles[id]; !ok {
		return model.ErrArticleNotFound
	}
	delete(f.articles, id)
	return nil
}

var (
	alice = session.Principal{UserID: 1, Username: "alice"}
	bob   = session.Principal{UserID: 2, Username: "bob"}
)

func TestArticleService_CreateAndGet(t *testing.T) {
	svc := NewArticleService(newFakeArticleStore())

	created, err := svc.Create(context.Background(), alice, model.ArticleRequest{Title: "Hello", Content: "First post"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, alice.UserID, created.AuthorID)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
}

func TestArticleService_CreateValidation(t *testing.T) {
	svc := NewArticleService(newFakeArticleStore())

	_, err := svc.Create(context.Background(), alice, model.ArticleRequest{Title: "", Content: ""})
	var fieldErrs *validation.FieldErrors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Len(t, fieldErrs.Violations, 2)
}

func TestArticleService_UpdateOwnershipEnforced(t *testing.T) {
	store := newFakeArticleStore()
	svc := NewArticleService(store)

	created, err := svc.Create(context.Background(), alice, model.ArticleRequest{Title: "Mine", Content: "body"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), bob, created.ID, model.ArticleRequest{Title: "Stolen", Content: "body"})
	assert.ErrorIs(t, err, model.ErrAccessDenied)

	// The article is left unmodified.
	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)
}

func TestArticleService_DeleteOwnershipEnforced(t *testing.T) {
	svc := NewArticleService(newFakeArticleStore())

	created, err := svc.Create(context.Background(), alice, model.ArticleRequest{Title: "Mine", Content: "body"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), bob, created.ID)
	assert.ErrorIs(t, err, model.ErrAccessDenied)

	require.NoError(t, svc.Delete(context.Background(), alice, created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, model.ErrArticleNotFound)
}

func TestArticleService_UpdateMissingArticle(t *testing.T) {
	svc := NewArticleService(newFakeArticleStore())

	_, err := svc.Update(context.Background(), alice, 99, model.ArticleRequest{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, model.ErrArticleNotFound)
}
