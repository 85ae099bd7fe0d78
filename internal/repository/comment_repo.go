package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-blog-api/internal/model"
)

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func (r *CommentRepository) Create(ctx context.Context, c model.Comment) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO comments (article_id, author_id, body, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		c.ArticleID, c.AuthorID, c.Body, c.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create comment: %w", err)
	}
	return id, nil
}

func (r *CommentRepository) ListByArticle(ctx context.Context, articleID int64) ([]model.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.article_id, c.author_id, u.username, c.body, c.created_at
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.article_id = $1
		 ORDER BY c.created_at ASC, c.id ASC`, articleID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		var (
			c      model.Comment
			author model.UserProfile
		)
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.AuthorID, &author.Username, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		author.ID = c.AuthorID
		c.Author = &author
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
