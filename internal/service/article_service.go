package service

import (
	"context"
	"time"

	"go-blog-api/internal/model"
	"go-blog-api/internal/session"
	"go-blog-api/internal/validation"
)

type ArticleStore interface {
	Create(ctx context.Context, a model.Article) (int64, error)
	FindByID(ctx context.Context, id int64) (model.Article, error)
	List(ctx context.Context) ([]model.Article, error)
	Update(ctx context.Context, a model.Article) error
	Delete(ctx context.Context, id int64) error
}

type ArticleService struct {
	articles ArticleStore
}

func NewArticleService(articles ArticleStore) *ArticleService {
	return &ArticleService{articles: articles}
}

func (s *ArticleService) Create(ctx context.Context, p session.Principal, req model.ArticleRequest) (model.Article, error) {
	if err := validation.Struct(req); err != nil {
		return model.Article{}, err
	}

	now := time.Now().UTC()
	article := model.Article{
		Title:     req.Title,
		Content:   req.Content,
		AuthorID:  p.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.articles.Create(ctx, article)
	if err != nil {
		return model.Article{}, err
	}
	return s.articles.FindByID(ctx, id)
}

func (s *ArticleService) List(ctx context.Context) ([]model.Article, error) {
	return s.articles.List(ctx)
}

func (s *ArticleService) Get(ctx context.Context, id int64) (model.Article, error) {
	return s.articles.FindByID(ctx, id)
}

// Update modifies an article after checking the caller owns it. Route-level
// auth only guarantees a logged-in principal; ownership is decided here.
func (s *ArticleService) Update(ctx context.Context, p session.Principal, id int64, req model.ArticleRequest) (model.Article, error) {
	if err := validation.Struct(req); err != nil {
		return model.Article{}, err
	}

	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return model.Article{}, err
	}
	if article.AuthorID != p.UserID {
		return model.Article{}, model.ErrAccessDenied
	}

	article.Title = req.Title
	article.Content = req.Content
	article.UpdatedAt = time.Now().UTC()

	if err := s.articles.Update(ctx, article); err != nil {
		return model.Article{}, err
	}
	return article, nil
}

func (s *ArticleService) Delete(ctx context.Context, p session.Principal, id int64) error {
	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if article.AuthorID != p.UserID {
		return model.ErrAccessDenied
	}
	return s.articles.Delete(ctx, id)
}
