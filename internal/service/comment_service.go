package service

import (
	"context"
	"time"

	"go-blog-api/internal/model"
	"go-blog-api/internal/session"
	"go-blog-api/internal/validation"
)

type CommentStore interface {
	Create(ctx context.Context, c model.Comment) (int64, error)
	ListByArticle(ctx context.Context, articleID int64) ([]model.Comment, error)
}

type CommentService struct {
	comments CommentStore
	articles ArticleStore
}

func NewCommentService(comments CommentStore, articles ArticleStore) *CommentService {
	return &CommentService{comments: comments, articles: articles}
}

func (s *CommentService) Create(ctx context.Context, p session.Principal, articleID int64, req model.CommentRequest) (model.Comment, error) {
	if err := validation.Struct(req); err != nil {
		return model.Comment{}, err
	}

	// Commenting on a missing article is a 404, not a foreign key fault.
	if _, err := s.articles.FindByID(ctx, articleID); err != nil {
		return model.Comment{}, err
	}

	comment := model.Comment{
		ArticleID: articleID,
		AuthorID:  p.UserID,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}

	id, err := s.comments.Create(ctx, comment)
	if err != nil {
		return model.Comment{}, err
	}

	comment.ID = id
	comment.Author = &model.UserProfile{ID: p.UserID, Username: p.Username}
	return comment, nil
}

func (s *CommentService) ListByArticle(ctx context.Context, articleID int64) ([]model.Comment, error) {
	if _, err := s.articles.FindByID(ctx, articleID); err != nil {
		return nil, err
	}
	return s.comments.ListByArticle(ctx, articleID)
}
