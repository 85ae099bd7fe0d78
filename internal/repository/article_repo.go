package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-blog-api/internal/model"
)

type ArticleRepository struct {
	pool *pgxpool.Pool
}

func NewArticleRepository(pool *pgxpool.Pool) *ArticleRepository {
	return &ArticleRepository{pool: pool}
}

func (r *ArticleRepository) Create(ctx context.Context, a model.Article) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO articles (title, content, author_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		a.Title, a.Content, a.AuthorID, a.CreatedAt, a.UpdatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create article: %w", err)
	}
	return id, nil
}

func (r *ArticleRepository) FindByID(ctx context.Context, id int64) (model.Article, error) {
	var (
		a      model.Article
		author model.UserProfile
	)
	err := r.pool.QueryRow(ctx,
		`SELECT a.id, a.title, a.content, a.author_id, u.username, a.created_at, a.updated_at
		 FROM articles a
		 JOIN users u ON u.id = a.author_id
		 WHERE a.id = $1`, id).
		Scan(&a.ID, &a.Title, &a.Content, &a.AuthorID, &author.Username, &a.CreatedAt, &a.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Article{}, model.ErrArticleNotFound
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("find article by id: %w", err)
	}

	author.ID = a.AuthorID
	a.Author = &author
	return a, nil
}

func (r *ArticleRepository) List(ctx context.Context) ([]model.Article, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.title, a.content, a.author_id, u.username, a.created_at, a.updated_at
		 FROM articles a
		 JOIN users u ON u.id = a.author_id
		 ORDER BY a.created_at DESC, a.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]model.Article, 0)
	for rows.Next() {
		var (
			a      model.Article
			author model.UserProfile
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.AuthorID, &author.Username, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		author.ID = a.AuthorID
		a.Author = &author
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (r *ArticleRepository) Update(ctx context.Context, a model.Article) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE articles SET title = $2, content = $3, updated_at = $4 WHERE id = $1`,
		a.ID, a.Title, a.Content, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrArticleNotFound
	}
	return nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrArticleNotFound
	}
	return nil
}
